// Package secret decrypts the Fernet tokens that hold upstream and gateway credentials.
package secret

import (
	"strings"

	"pride-notify/internal/pkg/errs"

	"github.com/fernet/fernet-go"
)

// Decrypter turns an encrypted configuration value into plaintext.
type Decrypter interface {
	Decrypt(token string) (string, error)
}

type Cipher struct {
	keys []*fernet.Key
}

// NewCipher builds a cipher from the process-wide key. A missing or malformed key is fatal.
func NewCipher(encodedKey string) (*Cipher, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return nil, errs.Mark(errs.New("ENCRYPTION_KEY is empty"), errs.ErrSecretKeyMissing)
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "decode ENCRYPTION_KEY"), errs.ErrFatal)
	}
	return &Cipher{keys: []*fernet.Key{key}}, nil
}

// GenerateKey returns a fresh url-safe base64 key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", errs.Wrap(err, "generate fernet key")
	}
	return k.Encode(), nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), c.keys[0])
	if err != nil {
		return "", errs.Wrap(err, "encrypt secret")
	}
	return string(tok), nil
}

// Decrypt never includes the token or plaintext in its error.
func (c *Cipher) Decrypt(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.Mark(errs.New("empty secret"), errs.ErrSecretDecrypt)
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, c.keys)
	if msg == nil {
		return "", errs.Mark(errs.New("secret token rejected"), errs.ErrSecretDecrypt)
	}
	return string(msg), nil
}

// DecryptAll decrypts the values in order, failing on the first bad one.
func DecryptAll(d Decrypter, tokens ...string) ([]string, error) {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		v, err := d.Decrypt(t)
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "secret #%d", i+1), errs.ErrFatal)
		}
		out[i] = v
	}
	return out, nil
}

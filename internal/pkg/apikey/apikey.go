// Package apikey hashes and verifies the shared key presented by external dispatch triggers.
package apikey

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("api key hashing failed")
	ErrMismatch      = errors.New("api key mismatch")
	ErrEmptyKey      = errors.New("empty api key")
)

const DefaultCost = bcrypt.DefaultCost

func Hash(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}

	return string(hashed), nil
}

func Verify(hashed, key string) error {
	if hashed == "" || key == "" {
		return ErrEmptyKey
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(key))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}

	return nil
}

package bootstrap

import (
	"pride-notify/internal/pkg/config"
	"pride-notify/internal/pkg/jwt"
	"pride-notify/internal/pkg/secret"

	"go.uber.org/fx"
)

var SecurityModule = fx.Module("security",
	fx.Provide(
		NewJWTService,
		fx.Annotate(
			NewCipher,
			fx.As(new(secret.Decrypter)),
		),
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret)
}

// NewCipher fails startup when ENCRYPTION_KEY is not a valid Fernet key.
func NewCipher(cfg config.Config) (*secret.Cipher, error) {
	return secret.NewCipher(cfg.Crypto.EncryptionKey)
}

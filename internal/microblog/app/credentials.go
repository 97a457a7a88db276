package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/microblog/pkg/cryptox"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
)

// Credentials bundles the secrets-derived primitives shared by the
// services and the router.
type Credentials struct {
	Hasher   *cryptox.PasswordHasher
	Signer   *jwtx.HS256Signer
	Verifier *jwtx.HS256Verifier
}

// InitCredentials builds the token signer and verifier from SECRET_KEY and
// the password hasher from the pepper file, generating the pepper on first
// start. Changing SECRET_KEY invalidates every outstanding token; losing
// the pepper invalidates every stored password.
func InitCredentials(cfg Config, logger *slog.Logger) (*Credentials, error) {
	signer, err := jwtx.NewSignerHS256([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256([]byte(cfg.SecretKey), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("pepper: %w", err)
	}
	logger.Info("password pepper loaded", "path", cfg.PepperFile)

	return &Credentials{
		Hasher:   cryptox.NewPasswordHasher(pepper),
		Signer:   signer,
		Verifier: verifier,
	}, nil
}

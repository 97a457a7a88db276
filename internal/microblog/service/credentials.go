package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/store"
	"github.com/aussiebroadwan/microblog/pkg/cryptox"
	"github.com/aussiebroadwan/microblog/pkg/jwtx"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

// CredentialService owns password hashes and the two token kinds: bearer
// access tokens and stateless password reset tokens. Both are HS256 JWTs
// signed with the same server secret and told apart by their purpose claim.
type CredentialService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Mailer   Mailer

	Issuer    string
	AccessTTL time.Duration
	ResetTTL  time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *CredentialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SetPassword hashes plaintext and overwrites the user's stored hash.
func (s *CredentialService) SetPassword(ctx context.Context, userID int64, plaintext string) error {
	if err := validatePassword(plaintext); err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("password updated", slog.Int64("user_id", userID))
	return nil
}

// CheckPassword reports whether plaintext matches the user's hash. A user
// without a hash, or with a malformed one, never matches.
func (s *CredentialService) CheckPassword(user domain.User, plaintext string) bool {
	return s.Hasher.Verify(plaintext, user.PasswordHash) == nil
}

// Authenticate resolves a login. Unknown users and wrong passwords give the
// same error.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login for unknown user", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !s.CheckPassword(user, password) {
		log.Info("login with wrong password", slog.Int64("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// IssueAccessToken mints a bearer token for user and returns it with its
// expiry.
func (s *CredentialService) IssueAccessToken(user domain.User) (string, time.Time, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(user.ID, user.Username, s.Issuer, ttl, s.now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// IssueResetToken mints a password reset token valid for ttl. A ttl of zero
// uses the configured ResetTTL, falling back to ten minutes.
func (s *CredentialService) IssueResetToken(user domain.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ResetTTL
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultResetTokenTTL
	}

	token, err := s.Signer.Sign(jwtx.NewResetClaims(user.ID, s.Issuer, ttl, s.now()))
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken returns the user a reset token was issued for. Any
// failure (bad signature, expired, wrong purpose, user since deleted)
// yields false; the reason only goes to the debug log.
func (s *CredentialService) VerifyResetToken(ctx context.Context, token string) (domain.User, bool) {
	log := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		log.Debug("reset token rejected", slog.String("reason", resetFailureReason(err)))
		return domain.User{}, false
	}

	if err := claims.ValidatePurpose(jwtx.PurposeResetPassword); err != nil {
		log.Debug("reset token rejected", slog.String("reason", resetFailureReason(err)))
		return domain.User{}, false
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.ResetPassword)
	if err != nil {
		log.Debug("reset token rejected",
			slog.String("reason", "user lookup failed"),
			slog.Int64("user_id", claims.ResetPassword),
			slog.Any("error", err),
		)
		return domain.User{}, false
	}

	return user, true
}

func resetFailureReason(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrInvalidSig):
		return "bad signature"
	case errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	case errors.Is(err, jwtx.ErrPurpose):
		return "wrong purpose"
	default:
		return "invalid claims"
	}
}

// ResetPassword consumes a reset token and sets a new password. Tokens are
// stateless, so one stays usable until it expires.
func (s *CredentialService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, ok := s.VerifyResetToken(ctx, token)
	if !ok {
		return ErrInvalidResetToken
	}

	return s.SetPassword(ctx, user.ID, newPassword)
}

// RequestPasswordReset mails a reset token to the account registered under
// email. Unknown addresses succeed silently so the endpoint can't be used
// to probe for accounts.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	// 1. Find the account
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset for unknown email")
			return nil
		}
		return err
	}

	// 2. Mint the token
	token, err := s.IssueResetToken(user, 0)
	if err != nil {
		return err
	}

	// 3. Deliver it
	if s.Mailer == nil {
		log.Warn("no mailer configured, dropping reset token",
			slog.Int64("user_id", user.ID),
			slog.String("token_fp", cryptox.FingerprintToken(token)),
		)
		return nil
	}
	if err := s.Mailer.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	log.Info("password reset issued",
		slog.Int64("user_id", user.ID),
		slog.String("token_fp", cryptox.FingerprintToken(token)),
	)
	return nil
}

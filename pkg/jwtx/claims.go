package jwtx

import (
	"strconv"
	"time"

	"github.com/aussiebroadwan/microblog/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose must never be accepted
// for another, so a leaked reset link can't be replayed as a session.
const (
	PurposeAccess        = "access"
	PurposeResetPassword = "reset_password"
)

const (
	// DefaultAccessTokenTTL is the default lifetime for bearer tokens.
	DefaultAccessTokenTTL = 24 * time.Hour

	// DefaultResetTokenTTL is the default lifetime for password reset tokens.
	DefaultResetTokenTTL = 10 * time.Minute
)

// Claims are the token claims shared by access and reset tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Purpose is one of PurposeAccess or PurposeResetPassword.
	Purpose string `json:"purpose"`

	// ResetPassword carries the numeric user id on reset tokens.
	ResetPassword int64 `json:"reset_password,omitempty"`

	// Username for the authenticated user (access tokens only)
	Username string `json:"username,omitempty"`
}

// NewAccessClaims builds the claims for a bearer session token.
func NewAccessClaims(userID int64, username, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: newRegistered(userID, issuer, ttl, now),
		Purpose:          PurposeAccess,
		Username:         username,
	}
}

// NewResetClaims builds the claims for a password reset token.
func NewResetClaims(userID int64, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: newRegistered(userID, issuer, ttl, now),
		Purpose:          PurposeResetPassword,
		ResetPassword:    userID,
	}
}

func newRegistered(userID int64, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize128)
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidClaim
	}
	return id, nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidatePurpose rejects tokens minted for something else.
func (c *Claims) ValidatePurpose(expected string) error {
	if c.Purpose != expected {
		return ErrPurpose
	}
	if expected == PurposeResetPassword {
		id, err := c.UserID()
		if err != nil || id != c.ResetPassword {
			return ErrInvalidClaim
		}
	}
	return nil
}

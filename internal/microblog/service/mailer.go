package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, user domain.User, token string) error
}

// LogMailer writes the reset link to the request logger instead of sending
// mail. It is meant for development and single-node deployments where the
// operator relays the link.
type LogMailer struct {
	// ResetURL is the page that accepts ?token=...; the raw token is logged
	// when empty.
	ResetURL string
}

func (m LogMailer) SendPasswordReset(ctx context.Context, user domain.User, token string) error {
	link := token
	if m.ResetURL != "" {
		link = m.ResetURL + "?token=" + url.QueryEscape(token)
	}

	slogx.FromContext(ctx).Info("password reset link",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("link", link),
	)
	return nil
}

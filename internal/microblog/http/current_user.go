package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

type currentUserKey struct{}

// CurrentUserMiddleware loads the user named by the verified token and
// records the request as activity. It must run after
// httpx.AuthnMiddleware. Tokens for deleted users are rejected with 401.
func CurrentUserMiddleware(users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			id, ok := httpx.UserIDFromContext(ctx)
			if !ok {
				microblogsdk.ErrInvalidToken.WriteError(w)
				return
			}

			user, err := users.GetUserByID(ctx, id)
			if err != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					microblogsdk.ErrInvalidToken.WriteError(w)
					return
				}
				log.Error("failed to load current user", slog.Any("error", err))
				microblogsdk.ErrServerError.WriteError(w)
				return
			}

			// Activity tracking never fails the request
			if err := users.TouchLastSeen(ctx, id); err != nil {
				log.Warn("failed to update last seen", slog.Any("error", err))
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, currentUserKey{}, user)))
		})
	}
}

// currentUser returns the user loaded by CurrentUserMiddleware.
func currentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(currentUserKey{}).(domain.User)
	return u, ok
}

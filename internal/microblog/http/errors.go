package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
)

// writeServiceError maps a service error onto an API error response.
// Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidAboutMe),
		errors.Is(err, service.ErrInvalidPost),
		errors.Is(err, service.ErrInvalidLanguage):
		microblogsdk.NewAPIError(http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)

	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		microblogsdk.NewAPIError(http.StatusConflict, microblogsdk.ErrorCodeConflict, err.Error()).WriteError(w)

	case errors.Is(err, service.ErrUserNotFound):
		microblogsdk.ErrUserNotFound.WriteError(w)

	case errors.Is(err, service.ErrInvalidCredentials):
		microblogsdk.ErrInvalidCredentials.WriteError(w)

	case errors.Is(err, service.ErrInvalidResetToken):
		microblogsdk.NewAPIError(http.StatusBadRequest, microblogsdk.ErrorCodeInvalidToken, err.Error()).WriteError(w)

	default:
		log.Error(msg, slog.Any("error", err))
		microblogsdk.ErrServerError.WriteError(w)
	}
}

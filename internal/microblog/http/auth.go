package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

type AuthHandler struct {
	UserService       *service.UserService
	CredentialService *service.CredentialService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Create an account. Usernames and emails must be unique.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		microblogsdk.RegisterRequest	true	"username, email, password"
//	@Success		201		{object}	microblogsdk.UserResponse
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Invalid username, email or password"
//	@Failure		409		{object}	microblogsdk.ErrorResponse	"Username or email already registered"
//	@Failure		429		{object}	microblogsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/users [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req microblogsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	user, err := h.UserService.Register(ctx, strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, log, err, "failed to register user")
		return
	}

	resp := toUserResponse(user)
	resp.Email = user.Email
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange a username and password for a bearer access token.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		microblogsdk.LoginRequest	true	"username, password"
//	@Success		200		{object}	microblogsdk.TokenResponse
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid username or password"
//	@Failure		429		{object}	microblogsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req microblogsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	user, err := h.CredentialService.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeServiceError(w, log, err, "failed to authenticate")
		return
	}

	token, expiresAt, err := h.CredentialService.IssueAccessToken(user)
	if err != nil {
		log.Error("failed to issue access token", "error", err)
		microblogsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, microblogsdk.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   max(int(time.Until(expiresAt).Seconds()), 0),
	})
}

// HandleResetRequest godoc
//
//	@Summary		Request a password reset
//	@Description	Sends a reset link to the address if it belongs to an account. The response is the same either way.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body	microblogsdk.PasswordResetRequest	true	"email"
//	@Success		202		"Accepted"
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Malformed request"
//	@Failure		429		{object}	microblogsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/password-reset [post].
func (h *AuthHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req microblogsdk.PasswordResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.CredentialService.RequestPasswordReset(ctx, strings.TrimSpace(req.Email)); err != nil {
		// Still 202: failures must look like unknown addresses
		log.Error("failed to send password reset", "error", err)
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleResetConfirm godoc
//
//	@Summary		Confirm a password reset
//	@Description	Set a new password using the token from the reset link.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body	microblogsdk.PasswordResetConfirmRequest	true	"token, password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Invalid or expired token, or invalid password"
//	@Failure		429		{object}	microblogsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/password-reset/confirm [post].
func (h *AuthHandler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req microblogsdk.PasswordResetConfirmRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.CredentialService.ResetPassword(ctx, req.Token, req.Password); err != nil {
		writeServiceError(w, log, err, "failed to reset password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

type UsersHandler struct {
	UserService   *service.UserService
	SocialService *service.SocialService
	PostService   *service.PostService
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user's profile, including their email.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	microblogsdk.UserResponse
//	@Failure		401	{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, ok := currentUser(ctx)
	if !ok {
		microblogsdk.ErrInvalidToken.WriteError(w)
		return
	}

	resp, err := h.profile(r, me, me)
	if err != nil {
		writeServiceError(w, log, err, "failed to load profile")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleUpdateMe godoc
//
//	@Summary		Edit profile
//	@Description	Change the authenticated user's username and about text.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		microblogsdk.UpdateProfileRequest	true	"username, about_me"
//	@Success		200		{object}	microblogsdk.UserResponse
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Invalid username or about text"
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409		{object}	microblogsdk.ErrorResponse	"Username already taken"
//	@Router			/v1/me [patch].
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, ok := currentUser(ctx)
	if !ok {
		microblogsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req microblogsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	updated, err := h.UserService.UpdateProfile(ctx, me.ID, strings.TrimSpace(req.Username), req.AboutMe)
	if err != nil {
		writeServiceError(w, log, err, "failed to update profile")
		return
	}

	resp, err := h.profile(r, updated, updated)
	if err != nil {
		writeServiceError(w, log, err, "failed to load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetUser godoc
//
//	@Summary		User profile
//	@Description	Returns a user's public profile with avatar, follower counts and whether the caller follows them.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	microblogsdk.UserResponse
//	@Failure		401			{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404			{object}	microblogsdk.ErrorResponse	"User not found"
//	@Router			/v1/users/{username} [get].
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	resp, err := h.profile(r, me, target)
	if err != nil {
		writeServiceError(w, log, err, "failed to load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleUserPosts godoc
//
//	@Summary		User posts
//	@Description	Lists a user's posts, newest first.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Param			page		query		int		false	"Page number (default 1)"
//	@Success		200			{object}	microblogsdk.PostPageResponse
//	@Failure		401			{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404			{object}	microblogsdk.ErrorResponse	"User not found"
//	@Router			/v1/users/{username}/posts [get].
func (h *UsersHandler) HandleUserPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	_, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	page, err := h.PostService.UserPosts(ctx, target.ID, httpx.QueryInt(r, "page", 1))
	if err != nil {
		writeServiceError(w, log, err, "failed to list user posts")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPageResponse(page))
}

// HandleFollow godoc
//
//	@Summary		Follow
//	@Description	Follow a user. Following someone already followed is a no-op.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path	string	true	"Username"
//	@Success		204			"Following"
//	@Failure		401			{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404			{object}	microblogsdk.ErrorResponse	"User not found"
//	@Router			/v1/users/{username}/follow [post].
func (h *UsersHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.SocialService.Follow(ctx, me.ID, target.ID); err != nil {
		writeServiceError(w, log, err, "failed to follow user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUnfollow godoc
//
//	@Summary		Unfollow
//	@Description	Stop following a user. Unfollowing someone not followed is a no-op.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path	string	true	"Username"
//	@Success		204			"Not following"
//	@Failure		401			{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404			{object}	microblogsdk.ErrorResponse	"User not found"
//	@Router			/v1/users/{username}/follow [delete].
func (h *UsersHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.SocialService.Unfollow(ctx, me.ID, target.ID); err != nil {
		writeServiceError(w, log, err, "failed to unfollow user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolve returns the caller and the user named in the path. On failure
// the response has already been written.
func (h *UsersHandler) resolve(w http.ResponseWriter, r *http.Request) (me, target domain.User, ok bool) {
	ctx := r.Context()

	me, ok = currentUser(ctx)
	if !ok {
		microblogsdk.ErrInvalidToken.WriteError(w)
		return me, target, false
	}

	target, err := h.UserService.GetUserByUsername(ctx, r.PathValue("username"))
	if err != nil {
		writeServiceError(w, slogx.FromContext(ctx), err, "failed to load user")
		return me, target, false
	}
	return me, target, true
}

// profile builds the profile of target as seen by viewer. Email is only
// shown to the owner; is_following only to everyone else.
func (h *UsersHandler) profile(r *http.Request, viewer, target domain.User) (microblogsdk.UserResponse, error) {
	ctx := r.Context()
	resp := toUserResponse(target)

	var err error
	if resp.Followers, err = h.SocialService.FollowerCount(ctx, target.ID); err != nil {
		return resp, err
	}
	if resp.Following, err = h.SocialService.FollowingCount(ctx, target.ID); err != nil {
		return resp, err
	}

	if viewer.ID == target.ID {
		resp.Email = target.Email
		return resp, nil
	}

	following, err := h.SocialService.IsFollowing(ctx, viewer.ID, target.ID)
	if err != nil {
		return resp, err
	}
	resp.IsFollowing = &following
	return resp, nil
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/microblog/internal/microblog/service"
	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
	"github.com/aussiebroadwan/microblog/pkg/slogx"
)

type PostsHandler struct {
	PostService     *service.PostService
	TimelineService *service.TimelineService
}

// HandleCreate godoc
//
//	@Summary		Create post
//	@Description	Publish a post of 1 to 140 characters. Language is an optional code of up to 5 characters.
//	@Tags			Posts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		microblogsdk.CreatePostRequest	true	"body, language"
//	@Success		201		{object}	microblogsdk.PostResponse
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Invalid body or language"
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/posts [post].
func (h *PostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, ok := currentUser(ctx)
	if !ok {
		microblogsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req microblogsdk.CreatePostRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	post, err := h.PostService.CreatePost(ctx, me.ID, req.Body, req.Language)
	if err != nil {
		writeServiceError(w, log, err, "failed to create post")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPostResponse(post))
}

// HandleExplore godoc
//
//	@Summary		Explore
//	@Description	Lists every post, newest first.
//	@Tags			Posts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number (default 1)"
//	@Success		200		{object}	microblogsdk.PostPageResponse
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/posts [get].
func (h *PostsHandler) HandleExplore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	page, err := h.PostService.Explore(ctx, httpx.QueryInt(r, "page", 1))
	if err != nil {
		writeServiceError(w, log, err, "failed to list posts")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPageResponse(page))
}

// HandleTimeline godoc
//
//	@Summary		Timeline
//	@Description	Posts by the caller and everyone they follow, newest first.
//	@Tags			Posts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number (default 1)"
//	@Success		200		{object}	microblogsdk.PostPageResponse
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/timeline [get].
func (h *PostsHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	me, ok := currentUser(ctx)
	if !ok {
		microblogsdk.ErrInvalidToken.WriteError(w)
		return
	}

	page, err := h.TimelineService.TimelinePage(ctx, me.ID, httpx.QueryInt(r, "page", 1))
	if err != nil {
		writeServiceError(w, log, err, "failed to build timeline")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toPageResponse(page))
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/microblog/pkg/httpx"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
)

type TranslateHandler struct {
	Translator Translator
}

// ServeHTTP godoc
//
//	@Summary		Translate text
//	@Description	Translates text between two languages. If the provider fails the response is still 200 and text holds the failure message.
//	@Tags			Translation
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		microblogsdk.TranslateRequest	true	"text, source_language, dest_language"
//	@Success		200		{object}	microblogsdk.TranslateResponse
//	@Failure		400		{object}	microblogsdk.ErrorResponse	"Missing text or language"
//	@Failure		401		{object}	microblogsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/translate [post].
func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req microblogsdk.TranslateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		microblogsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if req.Text == "" || req.SourceLanguage == "" || req.DestLanguage == "" {
		microblogsdk.NewAPIError(http.StatusBadRequest, microblogsdk.ErrorCodeInvalidRequest,
			"text, source_language and dest_language are required").WriteError(w)
		return
	}

	text := h.Translator.Translate(r.Context(), req.Text, req.SourceLanguage, req.DestLanguage)
	httpx.WriteJSON(w, http.StatusOK, microblogsdk.TranslateResponse{Text: text})
}

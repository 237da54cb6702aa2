package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ShortLinkHandler は短縮リンクのリダイレクトを行うHTTPハンドラー。
type ShortLinkHandler struct {
	service ShortLinkServiceInterface
}

// NewShortLinkHandler はShortLinkHandlerを生成する。
func NewShortLinkHandler(service ShortLinkServiceInterface) *ShortLinkHandler {
	return &ShortLinkHandler{service: service}
}

// Redirect は短縮コードをレシピの正規URLへ302でリダイレクトする。
// GET /s/{code}
func (h *ShortLinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

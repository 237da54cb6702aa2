package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/subscription"
)

// SubscriptionServiceInterface はフォローハンドラーが必要とするサービスインターフェース。
type SubscriptionServiceInterface interface {
	// Subscribe は著者をフォローする。自分自身と重複はSubscriptionError。
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.AuthorWithRecipes, error)
	// Unsubscribe はフォローを解除する。
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// List はフォロー中の著者を1ページ分返す。
	List(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*subscription.ListResult, error)
}

// SubscriptionHandler はフォロー管理のHTTPハンドラー。
type SubscriptionHandler struct {
	service   SubscriptionServiceInterface
	paginator Paginator
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface, paginator Paginator) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:   service,
		paginator: paginator,
	}
}

// ListSubscriptions はフォロー中の著者一覧を返す。
// GET /api/users/subscriptions?page=&limit=&recipes_limit=
func (h *SubscriptionHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	values := r.URL.Query()
	page := h.paginator.Parse(values)

	result, err := h.service.List(r.Context(), userID, page, parseRecipesLimit(values))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.paginator.Envelope(r, result.Count, page, toSubscriptionResponses(result.Authors)))
}

// Subscribe は著者をフォローする。
// POST /api/users/{id}/subscribe?recipes_limit=
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	authorID, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	author, err := h.service.Subscribe(r.Context(), userID, authorID, parseRecipesLimit(r.URL.Query()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriptionResponse(*author))
}

// Unsubscribe はフォローを解除する。
// DELETE /api/users/{id}/subscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	authorID, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), userID, authorID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/foodgram/internal/middleware"
	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Profile は閲覧者から見たユーザーのプロフィールを返す。
	Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error)
	// List はユーザーを1ページ分返す。
	List(ctx context.Context, viewerID int64, page model.Page) (*user.ListResult, error)
	// Withdraw はユーザーの退会処理を実行する。
	// レシピ、お気に入り、買い物リスト、フォローも削除される。
	Withdraw(ctx context.Context, userID int64) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	paginator Paginator
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, paginator Paginator) *UserHandler {
	return &UserHandler{
		service:   service,
		paginator: paginator,
	}
}

// ListUsers はユーザー一覧を返す。認証は任意。
// GET /api/users?page=&limit=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := h.paginator.Parse(r.URL.Query())

	result, err := h.service.List(r.Context(), middleware.ViewerFromContext(r.Context()), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	users := make([]userResponse, len(result.Users))
	for i, p := range result.Users {
		users[i] = toUserResponse(p)
	}
	writeJSON(w, http.StatusOK, h.paginator.Envelope(r, result.Count, page, users))
}

// Me は認証済みユーザー自身のプロフィールを返す。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), userID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*profile))
}

// GetUser はユーザーのプロフィールを返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	profile, err := h.service.Profile(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*profile))
}

// Withdraw はユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
)

// MembershipToggler はお気に入り・買い物リストのいずれか1種類への追加と削除を行う。
type MembershipToggler interface {
	Add(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error)
	Remove(ctx context.Context, userID, recipeID int64) error
}

// MembershipHandler はお気に入り・買い物リストのHTTPハンドラー。
// 種類ごとにインスタンスを作り、同じルート構成で登録する。
type MembershipHandler struct {
	toggler MembershipToggler
}

// NewMembershipHandler はMembershipHandlerを生成する。
func NewMembershipHandler(toggler MembershipToggler) *MembershipHandler {
	return &MembershipHandler{toggler: toggler}
}

// Add はレシピを追加する。
// POST /api/recipes/{id}/favorite, POST /api/recipes/{id}/shopping_cart
func (h *MembershipHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	recipeID, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	short, err := h.toggler.Add(r.Context(), userID, recipeID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, short)
}

// Remove はレシピを削除する。
// DELETE /api/recipes/{id}/favorite, DELETE /api/recipes/{id}/shopping_cart
func (h *MembershipHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	recipeID, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.toggler.Remove(r.Context(), userID, recipeID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

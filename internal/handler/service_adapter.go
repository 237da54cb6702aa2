package handler

import (
	"context"

	"github.com/hitoshi/foodgram/internal/membership"
	"github.com/hitoshi/foodgram/internal/model"
)

// MembershipServiceAdapter は membership.Service を1種類の MembershipToggler に適合させるアダプタ。
type MembershipServiceAdapter struct {
	svc  *membership.Service
	kind model.MembershipKind
}

// NewMembershipServiceAdapter は種類を固定したMembershipServiceAdapterを生成する。
func NewMembershipServiceAdapter(svc *membership.Service, kind model.MembershipKind) *MembershipServiceAdapter {
	return &MembershipServiceAdapter{svc: svc, kind: kind}
}

// Add はレシピを追加しhandlerレスポンス型で返す。
func (a *MembershipServiceAdapter) Add(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error) {
	short, err := a.svc.Add(ctx, a.kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	resp := toRecipeShortResponse(*short)
	return &resp, nil
}

// Remove はレシピを削除する。
func (a *MembershipServiceAdapter) Remove(ctx context.Context, userID, recipeID int64) error {
	return a.svc.Remove(ctx, a.kind, userID, recipeID)
}

// --- compile-time interface checks ---

var _ MembershipToggler = (*MembershipServiceAdapter)(nil)

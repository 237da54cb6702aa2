package model

import "time"

// MembershipKind はユーザーとレシピの関連の種類を表す。
// お気に入りと買い物リストは同じ不変条件と操作を共有する。
type MembershipKind string

const (
	// MembershipFavorite はお気に入り。
	MembershipFavorite MembershipKind = "favorite"
	// MembershipCart は買い物リスト。
	MembershipCart MembershipKind = "cart"
)

// Valid は定義済みの種類かどうかを返す。
func (k MembershipKind) Valid() bool {
	return k == MembershipFavorite || k == MembershipCart
}

// Label はメッセージ表示用の名称を返す。
func (k MembershipKind) Label() string {
	switch k {
	case MembershipFavorite:
		return "お気に入り"
	case MembershipCart:
		return "買い物リスト"
	default:
		return string(k)
	}
}

// Membership はユーザーとレシピの関連（お気に入り/買い物リスト）を表す。
// (UserID, RecipeID) は種類ごとにユニーク。
type Membership struct {
	Kind      MembershipKind
	UserID    int64
	RecipeID  int64
	CreatedAt time.Time
}

// CartIngredientRow は買い物リスト内レシピの食材行を表す。
// 集計前の1行で、同じ食材が複数レシピから現れうる。
type CartIngredientRow struct {
	RecipeID        int64
	Name            string
	MeasurementUnit string
	Amount          int
}

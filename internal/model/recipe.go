package model

import (
	"math"
	"time"
)

// Recipe は著者が投稿したレシピを表す。
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Image       string
	Text        string
	CookingTime int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeWithState はレシピと閲覧者ごとの状態（お気に入り/買い物リスト）を結合したモデル。
// 匿名の閲覧者では両フラグとも常にfalse。
type RecipeWithState struct {
	Recipe
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeShort はフォロー一覧やお気に入り追加のレスポンスで使う簡略表現。
type RecipeShort struct {
	ID          int64
	Name        string
	Image       string
	CookingTime int
}

// RecipeIngredient はレシピと食材の中間行（分量付き）を表す。
type RecipeIngredient struct {
	RecipeID     int64
	IngredientID int64
	Amount       int
}

// IngredientAmount はレシピに含まれる食材を分量付きで表す。
type IngredientAmount struct {
	ID              int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeFilter はレシピ一覧の絞り込み条件を表す。
// カテゴリ間はAND、TagSlugs内はORで結合する。
type RecipeFilter struct {
	AuthorID      *int64
	TagSlugs      []string
	FavoritedOnly bool
	InCartOnly    bool
}

// ForViewer は閲覧者に応じて適用可能な条件のみを残したフィルタを返す。
// 匿名の閲覧者にはお気に入り・買い物リストの絞り込みを適用しない（エラーにもしない）。
func (f RecipeFilter) ForViewer(viewerID int64) RecipeFilter {
	if viewerID == AnonymousUserID {
		f.FavoritedOnly = false
		f.InCartOnly = false
	}
	return f
}

// Page はページ番号方式のページネーション指定を表す。
type Page struct {
	Number int // 1始まり
	Limit  int
}

// MaxNumber は Offset()+Limit が int に収まる最大のページ番号を返す。
func (p Page) MaxNumber() int {
	if p.Limit <= 0 {
		return math.MaxInt
	}
	return (math.MaxInt - p.Limit) / p.Limit
}

// Offset はページ先頭のオフセットを返す。
// 桁あふれするページ番号はMaxNumberに丸め、常に非負の値を返す。
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit <= 0 {
		return 0
	}
	n := p.Number
	if last := p.MaxNumber(); n > last {
		n = last
	}
	return (n - 1) * p.Limit
}

package model

import "time"

// Subscription はユーザーと著者のフォロー関係を表す。
// (UserID, AuthorID) はユニークで、UserID == AuthorID は書き込み時に拒否される。
type Subscription struct {
	ID        int64
	UserID    int64
	AuthorID  int64
	CreatedAt time.Time
}

// AuthorWithRecipes はフォロー中の著者とそのレシピ数、最新レシピのプレビューを表す。
type AuthorWithRecipes struct {
	UserProfile
	RecipesCount int
	Recipes      []RecipeShort
}

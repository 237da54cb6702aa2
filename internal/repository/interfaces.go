// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/foodgram/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByIDs は指定IDのユーザーをまとめて取得する。存在しないIDはマップに含まれない。
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)

	// List はユーザーをID昇順で1ページ分取得する。
	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// Count はユーザーの総数を返す。
	Count(ctx context.Context) (int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// レシピ、お気に入り、買い物リスト、フォロー、セッションはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// SessionRepository はセッションデータの参照インターフェース。
// セッションの発行は外部の認証基盤が行う。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}

// IngredientRepository は食材参照データの永続化インターフェース。
type IngredientRepository interface {
	// FindByID は指定IDの食材を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Ingredient, error)

	// SearchByNamePrefix は名前の前方一致（大文字小文字を区別しない）で食材を検索する。
	// prefixが空の場合は全件を返す。名前の昇順。
	SearchByNamePrefix(ctx context.Context, prefix string) ([]model.Ingredient, error)

	// ExistingIDs は指定IDのうち存在するものを返す。
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)

	// BulkInsert は食材を一括登録する。(name, measurement_unit) が既存の行はスキップする。
	// 実際に登録した件数を返す。
	BulkInsert(ctx context.Context, ingredients []model.Ingredient) (int, error)
}

// TagRepository はタグ参照データの永続化インターフェース。
type TagRepository interface {
	// List は全タグをID順で返す。
	List(ctx context.Context) ([]model.Tag, error)

	// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Tag, error)

	// ExistingIDs は指定IDのうち存在するものを返す。
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

// RecipeRepository はレシピと中間テーブル（食材・タグ）の永続化インターフェース。
type RecipeRepository interface {
	// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Recipe, error)

	// FindWithState は閲覧者から見た状態付きでレシピを取得する。見つからない場合はnilを返す。
	// viewerIDがmodel.AnonymousUserIDの場合、状態フラグは常にfalse。
	FindWithState(ctx context.Context, viewerID, id int64) (*model.RecipeWithState, error)

	// List はフィルタに一致するレシピを作成日時の降順（同時刻はID降順）で返す。
	// filterは呼び出し側でForViewer済みであること。
	List(ctx context.Context, viewerID int64, filter model.RecipeFilter, limit, offset int) ([]model.RecipeWithState, error)

	// Count はフィルタに一致するレシピ数を返す。
	Count(ctx context.Context, viewerID int64, filter model.RecipeFilter) (int, error)

	// IngredientsByRecipeIDs はレシピごとの食材（分量付き、名前順）を返す。
	IngredientsByRecipeIDs(ctx context.Context, recipeIDs []int64) (map[int64][]model.IngredientAmount, error)

	// TagsByRecipeIDs はレシピごとのタグ（ID順）を返す。
	TagsByRecipeIDs(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error)

	// ListShortByAuthor は著者の最新レシピを簡略表現で返す。limitが0以下の場合は全件。
	ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error)

	// CountByAuthors は著者ごとのレシピ数を返す。レシピがない著者はマップに含まれない。
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error)

	// Create はレシピと食材・タグの中間行を同一トランザクションで作成する。
	// 成功時はrecipe.ID、CreatedAt、UpdatedAtを設定する。
	Create(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient, tagIDs []int64) error

	// Update はレシピを更新し、食材・タグの中間行を全て削除してから再作成する。
	// 全ての処理は同一トランザクションで行う。
	Update(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient, tagIDs []int64) error

	// Delete は指定IDのレシピを削除する。中間行と関連行はCASCADE削除される。
	Delete(ctx context.Context, id int64) error
}

// MembershipRepository はお気に入り・買い物リストの永続化インターフェース。
// 種類ごとに別テーブルへ格納し、操作は共通。
type MembershipRepository interface {
	// Add は関連行を作成する。既に存在する場合はErrDuplicate、レシピが削除済みの場合はErrNotFoundを返す。
	Add(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) error

	// Remove は関連行を削除する。削除した行がない場合はfalseを返す。
	Remove(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) (bool, error)
}

// ShoppingListRepository は買い物リスト集計の入力を取得するインターフェース。
type ShoppingListRepository interface {
	// ListCartIngredients はユーザーの買い物リストに含まれる全レシピの食材行を返す。
	ListCartIngredients(ctx context.Context, userID int64) ([]model.CartIngredientRow, error)
}

// SubscriptionRepository はフォローデータの永続化インターフェース。
type SubscriptionRepository interface {
	// Create はフォローを作成する。既に存在する場合はErrDuplicate、著者が退会済みの場合はErrNotFoundを返す。
	Create(ctx context.Context, userID, authorID int64) error

	// Delete はフォローを削除する。削除した行がない場合はfalseを返す。
	Delete(ctx context.Context, userID, authorID int64) (bool, error)

	// ListAuthorIDs はユーザーがフォロー中の著者IDをフォロー日時の降順で返す。
	ListAuthorIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, error)

	// CountByUser はユーザーのフォロー数を返す。
	CountByUser(ctx context.Context, userID int64) (int, error)

	// SubscribedAuthorIDs は指定著者のうちユーザーがフォロー中のものを返す。
	SubscribedAuthorIDs(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/foodgram/internal/model"
)

// membershipTables は関連の種類と格納テーブルの対応。
// SQLに埋め込むテーブル名はこのマップからのみ取得する。
var membershipTables = map[model.MembershipKind]string{
	model.MembershipFavorite: "favorites",
	model.MembershipCart:     "shopping_cart_items",
}

func membershipTable(kind model.MembershipKind) (string, error) {
	table, ok := membershipTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown membership kind: %q", kind)
	}
	return table, nil
}

// PostgresMembershipRepo はPostgreSQLを使用したお気に入り・買い物リストのリポジトリ。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

// Add は関連行を作成する。一意制約違反の場合はErrDuplicateを返す。
func (r *PostgresMembershipRepo) Add(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) error {
	table, err := membershipTable(kind)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, recipe_id) VALUES ($1, $2)`,
		userID, recipeID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%sへの追加に失敗しました: %w", kind.Label(), err)
	}
	return nil
}

// Remove は関連行を削除する。削除した行がない場合はfalseを返す。
func (r *PostgresMembershipRepo) Remove(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) (bool, error) {
	table, err := membershipTable(kind)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID,
	)
	if err != nil {
		return false, fmt.Errorf("%sからの削除に失敗しました: %w", kind.Label(), err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// PostgresShoppingListRepo はPostgreSQLを使用した買い物リスト集計の入力リポジトリ。
type PostgresShoppingListRepo struct {
	db *sql.DB
}

// NewPostgresShoppingListRepo はPostgresShoppingListRepoを生成する。
func NewPostgresShoppingListRepo(db *sql.DB) *PostgresShoppingListRepo {
	return &PostgresShoppingListRepo{db: db}
}

// ListCartIngredients はユーザーの買い物リスト内の全レシピの食材行を返す。
// 集計はアプリケーション側で行うため、ここでは行をそのまま返す。
func (r *PostgresShoppingListRepo) ListCartIngredients(ctx context.Context, userID int64) ([]model.CartIngredientRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ri.recipe_id, i.name, i.measurement_unit, ri.amount
		 FROM shopping_cart_items c
		 JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE c.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの食材取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var result []model.CartIngredientRow
	for rows.Next() {
		var row model.CartIngredientRow
		if err := rows.Scan(&row.RecipeID, &row.Name, &row.MeasurementUnit, &row.Amount); err != nil {
			return nil, fmt.Errorf("買い物リスト行の読み取りに失敗しました: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("買い物リストの走査に失敗しました: %w", err)
	}
	return result, nil
}

// compile-time interface check
var (
	_ MembershipRepository   = (*PostgresMembershipRepo)(nil)
	_ ShoppingListRepository = (*PostgresShoppingListRepo)(nil)
)

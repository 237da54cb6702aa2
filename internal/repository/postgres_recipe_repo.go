package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/foodgram/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したレシピリポジトリ。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// recipeSelectWithState は閲覧者状態付きでレシピを取得するベースクエリ。$1は閲覧者ID。
// 匿名（ID=0）のユーザーは存在しないため、両フラグはfalseになる。
const recipeSelectWithState = `
	SELECT r.id, r.author_id, r.name, r.image, r.text, r.cooking_time, r.created_at, r.updated_at,
	       EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $1) AS is_favorited,
	       EXISTS (SELECT 1 FROM shopping_cart_items c WHERE c.recipe_id = r.id AND c.user_id = $1) AS is_in_shopping_cart
	FROM recipes r`

// recipeFilterWhere はフィルタ条件のWHERE句と引数を構築する。
// プレースホルダはargIndexから採番する。条件がない場合は空文字列を返す。
func recipeFilterWhere(viewerID int64, filter model.RecipeFilter, argIndex int) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("r.author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	// タグ: いずれかのslugを持つレシピに一致（OR）
	if len(filter.TagSlugs) > 0 {
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			         WHERE rt.recipe_id = r.id AND t.slug = ANY($%d))`, argIndex))
		args = append(args, pq.Array(filter.TagSlugs))
		argIndex++
	}

	if filter.FavoritedOnly && viewerID != model.AnonymousUserID {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM favorites ff WHERE ff.recipe_id = r.id AND ff.user_id = $%d)", argIndex))
		args = append(args, viewerID)
		argIndex++
	}

	if filter.InCartOnly && viewerID != model.AnonymousUserID {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM shopping_cart_items cc WHERE cc.recipe_id = r.id AND cc.user_id = $%d)", argIndex))
		args = append(args, viewerID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FindByID は指定IDのレシピを取得する。見つからない場合はnilを返す。
func (r *PostgresRecipeRepo) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, name, image, text, cooking_time, created_at, updated_at
		 FROM recipes WHERE id = $1`,
		id,
	).Scan(&recipe.ID, &recipe.AuthorID, &recipe.Name, &recipe.Image, &recipe.Text,
		&recipe.CookingTime, &recipe.CreatedAt, &recipe.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	return recipe, nil
}

// FindWithState は閲覧者から見た状態付きでレシピを取得する。見つからない場合はnilを返す。
func (r *PostgresRecipeRepo) FindWithState(ctx context.Context, viewerID, id int64) (*model.RecipeWithState, error) {
	rws := &model.RecipeWithState{}
	err := r.db.QueryRowContext(ctx,
		recipeSelectWithState+` WHERE r.id = $2`,
		viewerID, id,
	).Scan(&rws.ID, &rws.AuthorID, &rws.Name, &rws.Image, &rws.Text,
		&rws.CookingTime, &rws.CreatedAt, &rws.UpdatedAt,
		&rws.IsFavorited, &rws.IsInShoppingCart)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	return rws, nil
}

// List はフィルタに一致するレシピを新しい順で返す。
func (r *PostgresRecipeRepo) List(
	ctx context.Context,
	viewerID int64,
	filter model.RecipeFilter,
	limit, offset int,
) ([]model.RecipeWithState, error) {
	where, filterArgs := recipeFilterWhere(viewerID, filter, 2)
	args := append([]interface{}{viewerID}, filterArgs...)
	argIndex := len(args) + 1

	query := recipeSelectWithState + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	recipes := []model.RecipeWithState{}
	for rows.Next() {
		var rws model.RecipeWithState
		if err := rows.Scan(&rws.ID, &rws.AuthorID, &rws.Name, &rws.Image, &rws.Text,
			&rws.CookingTime, &rws.CreatedAt, &rws.UpdatedAt,
			&rws.IsFavorited, &rws.IsInShoppingCart); err != nil {
			return nil, fmt.Errorf("レシピ行の読み取りに失敗しました: %w", err)
		}
		recipes = append(recipes, rws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ一覧の走査に失敗しました: %w", err)
	}
	return recipes, nil
}

// Count はフィルタに一致するレシピ数を返す。
func (r *PostgresRecipeRepo) Count(ctx context.Context, viewerID int64, filter model.RecipeFilter) (int, error) {
	where, args := recipeFilterWhere(viewerID, filter, 1)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes r`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("レシピ数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// IngredientsByRecipeIDs はレシピごとの食材を名前順で返す。
func (r *PostgresRecipeRepo) IngredientsByRecipeIDs(ctx context.Context, recipeIDs []int64) (map[int64][]model.IngredientAmount, error) {
	result := make(map[int64][]model.IngredientAmount, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = ANY($1)
		 ORDER BY ri.recipe_id, i.name, i.measurement_unit`,
		pq.Array(recipeIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("レシピの食材取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var ia model.IngredientAmount
		if err := rows.Scan(&recipeID, &ia.ID, &ia.Name, &ia.MeasurementUnit, &ia.Amount); err != nil {
			return nil, fmt.Errorf("レシピ食材行の読み取りに失敗しました: %w", err)
		}
		result[recipeID] = append(result[recipeID], ia)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ食材の走査に失敗しました: %w", err)
	}
	return result, nil
}

// TagsByRecipeIDs はレシピごとのタグをID順で返す。
func (r *PostgresRecipeRepo) TagsByRecipeIDs(ctx context.Context, recipeIDs []int64) (map[int64][]model.Tag, error) {
	result := make(map[int64][]model.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT rt.recipe_id, t.id, t.name, t.slug
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = ANY($1)
		 ORDER BY rt.recipe_id, t.id`,
		pq.Array(recipeIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("レシピのタグ取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID int64
		var tag model.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("レシピタグ行の読み取りに失敗しました: %w", err)
		}
		result[recipeID] = append(result[recipeID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピタグの走査に失敗しました: %w", err)
	}
	return result, nil
}

// ListShortByAuthor は著者の最新レシピを簡略表現で返す。
func (r *PostgresRecipeRepo) ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error) {
	query := `SELECT id, name, image, cooking_time FROM recipes
		 WHERE author_id = $1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{authorID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("著者のレシピ取得に失敗しました: %w", err)
	}
	defer rows.Close()

	recipes := []model.RecipeShort{}
	for rows.Next() {
		var rs model.RecipeShort
		if err := rows.Scan(&rs.ID, &rs.Name, &rs.Image, &rs.CookingTime); err != nil {
			return nil, fmt.Errorf("著者のレシピ行の読み取りに失敗しました: %w", err)
		}
		recipes = append(recipes, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("著者のレシピ走査に失敗しました: %w", err)
	}
	return recipes, nil
}

// CountByAuthors は著者ごとのレシピ数を返す。
func (r *PostgresRecipeRepo) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id, COUNT(*) FROM recipes
		 WHERE author_id = ANY($1) GROUP BY author_id`,
		pq.Array(authorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("著者ごとのレシピ数取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authorID int64
		var count int
		if err := rows.Scan(&authorID, &count); err != nil {
			return nil, fmt.Errorf("レシピ数行の読み取りに失敗しました: %w", err)
		}
		counts[authorID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("レシピ数の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// Create はレシピと中間行を同一トランザクションで作成する。
func (r *PostgresRecipeRepo) Create(
	ctx context.Context,
	recipe *model.Recipe,
	ingredients []model.RecipeIngredient,
	tagIDs []int64,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO recipes (author_id, name, image, text, cooking_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		recipe.AuthorID, recipe.Name, recipe.Image, recipe.Text, recipe.CookingTime,
	).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}

	if err := insertRecipeRelations(ctx, tx, recipe.ID, ingredients, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// Update はレシピを更新し、中間行を全て置き換える。
func (r *PostgresRecipeRepo) Update(
	ctx context.Context,
	recipe *model.Recipe,
	ingredients []model.RecipeIngredient,
	tagIDs []int64,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`UPDATE recipes
		 SET name = $2, image = $3, text = $4, cooking_time = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		recipe.ID, recipe.Name, recipe.Image, recipe.Text, recipe.CookingTime,
	).Scan(&recipe.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("レシピの更新に失敗しました: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
		return fmt.Errorf("レシピ食材の削除に失敗しました: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID); err != nil {
		return fmt.Errorf("レシピタグの削除に失敗しました: %w", err)
	}

	if err := insertRecipeRelations(ctx, tx, recipe.ID, ingredients, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// insertRecipeRelations はレシピの食材・タグ中間行を一括挿入する。
func insertRecipeRelations(
	ctx context.Context,
	tx *sql.Tx,
	recipeID int64,
	ingredients []model.RecipeIngredient,
	tagIDs []int64,
) error {
	ingredientIDs := make([]int64, len(ingredients))
	amounts := make([]int64, len(ingredients))
	for i, ri := range ingredients {
		ingredientIDs[i] = ri.IngredientID
		amounts[i] = int64(ri.Amount)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
		 SELECT $1, unnest($2::bigint[]), unnest($3::integer[])`,
		recipeID, pq.Array(ingredientIDs), pq.Array(amounts),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("レシピ食材の登録に失敗しました: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recipe_tags (recipe_id, tag_id)
		 SELECT $1, unnest($2::bigint[])`,
		recipeID, pq.Array(tagIDs),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("レシピタグの登録に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのレシピを削除する。
func (r *PostgresRecipeRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)

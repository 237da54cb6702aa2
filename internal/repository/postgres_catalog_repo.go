package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/foodgram/internal/model"
)

// likeEscaper はLIKEパターンのメタ文字をエスケープする。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresIngredientRepo はPostgreSQLを使用した食材リポジトリ。
type PostgresIngredientRepo struct {
	db *sql.DB
}

// NewPostgresIngredientRepo はPostgresIngredientRepoを生成する。
func NewPostgresIngredientRepo(db *sql.DB) *PostgresIngredientRepo {
	return &PostgresIngredientRepo{db: db}
}

// FindByID は指定IDの食材を取得する。見つからない場合はnilを返す。
func (r *PostgresIngredientRepo) FindByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	ing := &model.Ingredient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`,
		id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("食材の取得に失敗しました: %w", err)
	}
	return ing, nil
}

// SearchByNamePrefix は名前の前方一致で食材を検索する。
func (r *PostgresIngredientRepo) SearchByNamePrefix(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	var args []interface{}
	if prefix != "" {
		query += ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, likeEscaper.Replace(prefix)+"%")
	}
	query += ` ORDER BY name ASC, measurement_unit ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("食材の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("食材行の読み取りに失敗しました: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食材一覧の走査に失敗しました: %w", err)
	}
	return ingredients, nil
}

// ExistingIDs は指定IDのうち存在する食材IDを返す。
func (r *PostgresIngredientRepo) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return existingIDs(ctx, r.db, "ingredients", ids)
}

// BulkInsert は食材を一括登録する。既存の (name, measurement_unit) はスキップする。
func (r *PostgresIngredientRepo) BulkInsert(ctx context.Context, ingredients []model.Ingredient) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ingredients (name, measurement_unit)
		 VALUES ($1, $2)
		 ON CONFLICT (name, measurement_unit) DO NOTHING`,
	)
	if err != nil {
		return 0, fmt.Errorf("食材登録文の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, ing := range ingredients {
		result, err := stmt.ExecContext(ctx, ing.Name, ing.MeasurementUnit)
		if err != nil {
			return 0, fmt.Errorf("食材の登録に失敗しました (%s): %w", ing.Name, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("登録結果の取得に失敗しました: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return inserted, nil
}

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// List は全タグをID順で返す。
func (r *PostgresTagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug FROM tags ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タグ一覧の走査に失敗しました: %w", err)
	}
	return tags, nil
}

// FindByID は指定IDのタグを取得する。見つからない場合はnilを返す。
func (r *PostgresTagRepo) FindByID(ctx context.Context, id int64) (*model.Tag, error) {
	tag := &model.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM tags WHERE id = $1`,
		id,
	).Scan(&tag.ID, &tag.Name, &tag.Slug)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タグの取得に失敗しました: %w", err)
	}
	return tag, nil
}

// ExistingIDs は指定IDのうち存在するタグIDを返す。
func (r *PostgresTagRepo) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return existingIDs(ctx, r.db, "tags", ids)
}

// existingIDs は参照テーブルに存在するIDの集合を返す。
// tableは呼び出し側の定数のみを渡すこと。
func existingIDs(ctx context.Context, db *sql.DB, table string, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("%sの存在確認に失敗しました: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%sのID読み取りに失敗しました: %w", table, err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%sのID走査に失敗しました: %w", table, err)
	}
	return found, nil
}

// compile-time interface check
var (
	_ IngredientRepository = (*PostgresIngredientRepo)(nil)
	_ TagRepository        = (*PostgresTagRepo)(nil)
)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresSubscriptionRepo はPostgreSQLを使用したフォローリポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// Create はフォローを作成する。一意制約違反の場合はErrDuplicateを返す。
func (r *PostgresSubscriptionRepo) Create(ctx context.Context, userID, authorID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, author_id) VALUES ($1, $2)`,
		userID, authorID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	return nil
}

// Delete はフォローを削除する。削除した行がない場合はfalseを返す。
func (r *PostgresSubscriptionRepo) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND author_id = $2`,
		userID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("フォローの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListAuthorIDs はフォロー中の著者IDを新しい順で返す。
func (r *PostgresSubscriptionRepo) ListAuthorIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id FROM subscriptions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("フォロー行の読み取りに失敗しました: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー一覧の走査に失敗しました: %w", err)
	}
	return ids, nil
}

// CountByUser はユーザーのフォロー数を返す。
func (r *PostgresSubscriptionRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// SubscribedAuthorIDs は指定著者のうちフォロー中のものを返す。
func (r *PostgresSubscriptionRepo) SubscribedAuthorIDs(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	subscribed := make(map[int64]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return subscribed, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT author_id FROM subscriptions WHERE user_id = $1 AND author_id = ANY($2)`,
		userID, pq.Array(authorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("フォロー状態行の読み取りに失敗しました: %w", err)
		}
		subscribed[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー状態の走査に失敗しました: %w", err)
	}
	return subscribed, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)

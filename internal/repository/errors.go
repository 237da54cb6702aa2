package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を表す。
// 同時リクエストの競合もこのエラーとして呼び出し側に返る。
var ErrDuplicate = errors.New("repository: duplicate row")

// ErrNotFound は対象の行、または挿入時に参照先の行が存在しないことを表す。
var ErrNotFound = errors.New("repository: row not found")

// PostgreSQLのSQLSTATE。
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func hasSQLState(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// isUniqueViolation はerrがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	return hasSQLState(err, pgUniqueViolation)
}

// isForeignKeyViolation は参照先の行が削除済みなどで外部キー制約に違反したかを判定する。
func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, pgForeignKeyViolation)
}

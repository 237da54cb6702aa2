package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestPostgresSubscriptionRepo_Create_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions (user_id, author_id)")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pq.Error{Code: "23505"})

	err = NewPostgresSubscriptionRepo(db).Create(context.Background(), 1, 2)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestPostgresSubscriptionRepo_Create_AuthorDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions (user_id, author_id)")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pq.Error{Code: "23503"})

	err = NewPostgresSubscriptionRepo(db).Create(context.Background(), 1, 2)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresSubscriptionRepo_Delete_ReportsMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subscriptions")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := NewPostgresSubscriptionRepo(db).Delete(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Error("deleted = true, want false for missing subscription")
	}
}

func TestPostgresSubscriptionRepo_ListAuthorIDs_Paging(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(1), 6, 12).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(int64(9)).AddRow(int64(4)))

	ids, err := NewPostgresSubscriptionRepo(db).ListAuthorIDs(context.Background(), 1, 6, 12)
	if err != nil {
		t.Fatalf("ListAuthorIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 9 || ids[1] != 4 {
		t.Errorf("ids = %v, want [9 4]", ids)
	}
}

func TestPostgresSubscriptionRepo_SubscribedAuthorIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("author_id = ANY($2)")).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(int64(4)))

	subscribed, err := NewPostgresSubscriptionRepo(db).SubscribedAuthorIDs(context.Background(), 1, []int64{4, 9})
	if err != nil {
		t.Fatalf("SubscribedAuthorIDs: %v", err)
	}
	if !subscribed[4] || subscribed[9] {
		t.Errorf("subscribed = %v, want only 4", subscribed)
	}
}

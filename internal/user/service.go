// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// SubscriptionChecker は閲覧者のフォロー状態の確認インターフェース。
type SubscriptionChecker interface {
	SubscribedAuthorIDs(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
}

// Service はユーザー管理のサービス層。
// プロフィール参照と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	subChecker  SubscriptionChecker
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	subChecker SubscriptionChecker,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		subChecker:  subChecker,
	}
}

// Profile は閲覧者から見たユーザーのプロフィールを返す。
// 匿名の閲覧者、または本人を見ている場合はIsSubscribedは常にfalse。
func (s *Service) Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	profile := &model.UserProfile{User: *user}
	if viewerID == model.AnonymousUserID || viewerID == userID {
		return profile, nil
	}

	subscribed, err := s.subChecker.SubscribedAuthorIDs(ctx, viewerID, []int64{userID})
	if err != nil {
		return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
	}
	profile.IsSubscribed = subscribed[userID]
	return profile, nil
}

// ListResult はユーザー一覧の1ページ分。
type ListResult struct {
	Count int
	Users []model.UserProfile
}

// List はユーザーをID昇順で1ページ分返す。
// フォロー状態は閲覧者ごとにまとめて取得し、匿名の閲覧者には常にfalseとする。
func (s *Service) List(ctx context.Context, viewerID int64, page model.Page) (*ListResult, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}
	if count == 0 || page.Offset() >= count {
		return &ListResult{Count: count, Users: []model.UserProfile{}}, nil
	}

	users, err := s.userRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	subscribed := map[int64]bool{}
	if viewerID != model.AnonymousUserID && len(users) > 0 {
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		subscribed, err = s.subChecker.SubscribedAuthorIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
		}
	}

	profiles := make([]model.UserProfile, len(users))
	for i, u := range users {
		profiles[i] = model.UserProfile{User: *u, IsSubscribed: subscribed[u.ID] && u.ID != viewerID}
	}
	return &ListResult{Count: count, Users: profiles}, nil
}

// Withdraw はユーザーの退会処理を実行する。
// セッションを削除してからユーザーを削除する。
// レシピ、お気に入り、買い物リスト、フォロー（する側・される側）はCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID int64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.Int64("user_id", userID),
	)

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.Int64("user_id", userID),
	)

	return nil
}

// Package subscription は著者のフォロー管理のドメインロジックを提供する。
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// RecipePreviewer はフォロー一覧に添える著者のレシピ情報の取得インターフェース。
type RecipePreviewer interface {
	ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error)
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error)
}

// ListResult はフォロー一覧の1ページ分と総件数。
type ListResult struct {
	Count   int
	Authors []model.AuthorWithRecipes
}

// Service はフォロー管理のサービス層。
type Service struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	recipes  RecipePreviewer
	// defaultRecipesLimit はリクエストで指定がない場合のレシピプレビュー件数。0以下は全件。
	defaultRecipesLimit int
	logger              *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipes RecipePreviewer,
	defaultRecipesLimit int,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		subRepo:             subRepo,
		userRepo:            userRepo,
		recipes:             recipes,
		defaultRecipesLimit: defaultRecipesLimit,
		logger:              logger,
	}
}

// RecipesLimit はプレビュー件数を決める。正の値が指定された場合はそれを優先する。
func (s *Service) RecipesLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.defaultRecipesLimit
}

// Subscribe は著者をフォローし、レシピ情報付きの著者を返す。
// 自分自身へのフォローは他の状態に関係なく常に失敗する。
// 既にフォロー済みの場合も同じエラーを返す。
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.AuthorWithRecipes, error) {
	if userID == authorID {
		return nil, model.NewSubscriptionError()
	}

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError()
	}

	if err := s.subRepo.Create(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewSubscriptionError()
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}

	s.logger.Info("author subscribed",
		slog.Int64("user_id", userID),
		slog.Int64("author_id", authorID),
	)

	authors, err := s.withRecipes(ctx, []*model.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &authors[0], nil
}

// Unsubscribe はフォローを解除する。フォローしていない場合はSubscriptionNotFoundエラー。
func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if author == nil {
		return model.NewUserNotFoundError()
	}

	deleted, err := s.subRepo.Delete(ctx, userID, authorID)
	if err != nil {
		return fmt.Errorf("フォローの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSubscriptionNotFoundError(authorID)
	}

	s.logger.Info("author unsubscribed",
		slog.Int64("user_id", userID),
		slog.Int64("author_id", authorID),
	)
	return nil
}

// List はフォロー中の著者をフォローの新しい順に1ページ分返す。
// 各著者にはレシピ数と最新レシピのプレビューを付与する。
func (s *Service) List(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*ListResult, error) {
	count, err := s.subRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー数の取得に失敗しました: %w", err)
	}
	if count == 0 || page.Offset() >= count {
		return &ListResult{Count: count, Authors: []model.AuthorWithRecipes{}}, nil
	}

	authorIDs, err := s.subRepo.ListAuthorIDs(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	users, err := s.userRepo.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	// フォロー順を維持する。取得中に退会した著者は除く。
	authors := make([]*model.User, 0, len(authorIDs))
	for _, id := range authorIDs {
		if u, ok := users[id]; ok {
			authors = append(authors, u)
		}
	}

	results, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &ListResult{Count: count, Authors: results}, nil
}

// withRecipes はフォロー中の著者にレシピ数とプレビューを付与する。
func (s *Service) withRecipes(ctx context.Context, authors []*model.User, recipesLimit int) ([]model.AuthorWithRecipes, error) {
	ids := make([]int64, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("レシピ数の取得に失敗しました: %w", err)
	}

	limit := s.RecipesLimit(recipesLimit)
	results := make([]model.AuthorWithRecipes, len(authors))
	for i, a := range authors {
		preview, err := s.recipes.ListShortByAuthor(ctx, a.ID, limit)
		if err != nil {
			return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
		}
		if preview == nil {
			preview = []model.RecipeShort{}
		}
		results[i] = model.AuthorWithRecipes{
			UserProfile:  model.UserProfile{User: *a, IsSubscribed: true},
			RecipesCount: counts[a.ID],
			Recipes:      preview,
		}
	}
	return results, nil
}

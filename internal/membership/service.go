// Package membership はお気に入りと買い物リストへのレシピの追加・削除を提供する。
// 2種類の関連は同じ不変条件を持つため、種類を引数に取る1つのサービスで扱う。
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// 操作種別
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// ChangeObserver は関連の変更を記録するインターフェース。
type ChangeObserver interface {
	ObserveMembershipChange(kind, op string)
}

// RecipeFinder はレシピの存在確認に使うインターフェース。
type RecipeFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Recipe, error)
}

// Service はお気に入り・買い物リストのサービス。
type Service struct {
	repo     repository.MembershipRepository
	recipes  RecipeFinder
	observer ChangeObserver
	logger   *slog.Logger
}

// NewService はServiceを生成する。observerはnilでもよい。
func NewService(
	repo repository.MembershipRepository,
	recipes RecipeFinder,
	observer ChangeObserver,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, recipes: recipes, observer: observer, logger: logger}
}

// Add はレシピを指定種類のリストに追加し、レシピの簡略表現を返す。
// レシピが存在しない場合はNotFound、既に追加済みの場合はAlreadyExistsエラー。
// 同時追加の競合はDBの一意制約で判定する。
func (s *Service) Add(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) (*model.RecipeShort, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown membership kind: %q", kind)
	}

	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}

	if err := s.repo.Add(ctx, kind, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError(kind)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewRecipeNotFoundError(recipeID)
		}
		return nil, fmt.Errorf("%sへの追加に失敗しました: %w", kind.Label(), err)
	}

	s.observe(kind, OpAdd)
	return &model.RecipeShort{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}, nil
}

// Remove はレシピを指定種類のリストから削除する。
// レシピが存在しない場合はNotFound、追加されていない場合はNotInListエラー。
func (s *Service) Remove(ctx context.Context, kind model.MembershipKind, userID, recipeID int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown membership kind: %q", kind)
	}

	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return model.NewRecipeNotFoundError(recipeID)
	}

	removed, err := s.repo.Remove(ctx, kind, userID, recipeID)
	if err != nil {
		return fmt.Errorf("%sからの削除に失敗しました: %w", kind.Label(), err)
	}
	if !removed {
		return model.NewNotInListError(kind)
	}

	s.observe(kind, OpRemove)
	return nil
}

func (s *Service) observe(kind model.MembershipKind, op string) {
	if s.observer != nil {
		s.observer.ObserveMembershipChange(string(kind), op)
	}
}

// Package recipe はレシピの一覧・詳細取得と作成・更新・削除のドメインロジックを提供する。
package recipe

import (
	"context"
	"fmt"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// Detail は閲覧者から見たレシピの完全な表現。
type Detail struct {
	model.RecipeWithState
	Author      model.UserProfile
	Ingredients []model.IngredientAmount
	Tags        []model.Tag
}

// ListResult はレシピ一覧の1ページ分と、条件に一致する総件数。
type ListResult struct {
	Count   int
	Recipes []Detail
}

// QueryService はレシピの参照サービス。
// 閲覧者は常に引数で受け取り、匿名の場合はmodel.AnonymousUserIDを渡す。
type QueryService struct {
	recipes       repository.RecipeRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
}

// NewQueryService はQueryServiceを生成する。
func NewQueryService(
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
) *QueryService {
	return &QueryService{
		recipes:       recipes,
		users:         users,
		subscriptions: subscriptions,
	}
}

// List はフィルタに一致するレシピを新しい順に1ページ分返す。
// 匿名の閲覧者にはお気に入り・買い物リストの絞り込みを適用しない。
func (s *QueryService) List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Page) (*ListResult, error) {
	filter = filter.ForViewer(viewerID)

	count, err := s.recipes.Count(ctx, viewerID, filter)
	if err != nil {
		return nil, fmt.Errorf("レシピ件数の取得に失敗しました: %w", err)
	}
	if count == 0 || page.Offset() >= count {
		return &ListResult{Count: count, Recipes: []Detail{}}, nil
	}

	rows, err := s.recipes.List(ctx, viewerID, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("レシピ一覧の取得に失敗しました: %w", err)
	}

	details, err := s.assemble(ctx, viewerID, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{Count: count, Recipes: details}, nil
}

// Get は指定IDのレシピを返す。存在しない場合はNotFoundエラー。
func (s *QueryService) Get(ctx context.Context, viewerID, id int64) (*Detail, error) {
	row, err := s.recipes.FindWithState(ctx, viewerID, id)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if row == nil {
		return nil, model.NewRecipeNotFoundError(id)
	}

	details, err := s.assemble(ctx, viewerID, []model.RecipeWithState{*row})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// assemble はレシピ行に著者・食材・タグを付与する。
// クエリ数はレシピ件数に依存しない。
func (s *QueryService) assemble(ctx context.Context, viewerID int64, rows []model.RecipeWithState) ([]Detail, error) {
	recipeIDs := make([]int64, 0, len(rows))
	authorIDs := make([]int64, 0, len(rows))
	seenAuthor := make(map[int64]bool, len(rows))
	for _, r := range rows {
		recipeIDs = append(recipeIDs, r.ID)
		if !seenAuthor[r.AuthorID] {
			seenAuthor[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	ingredients, err := s.recipes.IngredientsByRecipeIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("レシピ食材の取得に失敗しました: %w", err)
	}
	tags, err := s.recipes.TagsByRecipeIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("レシピタグの取得に失敗しました: %w", err)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("著者の取得に失敗しました: %w", err)
	}

	subscribed := map[int64]bool{}
	if viewerID != model.AnonymousUserID {
		subscribed, err = s.subscriptions.SubscribedAuthorIDs(ctx, viewerID, authorIDs)
		if err != nil {
			return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
		}
	}

	details := make([]Detail, len(rows))
	for i, r := range rows {
		d := Detail{
			RecipeWithState: r,
			Ingredients:     ingredients[r.ID],
			Tags:            tags[r.ID],
		}
		if d.Ingredients == nil {
			d.Ingredients = []model.IngredientAmount{}
		}
		if d.Tags == nil {
			d.Tags = []model.Tag{}
		}
		if u, ok := authors[r.AuthorID]; ok {
			d.Author.User = *u
		} else {
			d.Author.ID = r.AuthorID
		}
		d.Author.IsSubscribed = subscribed[r.AuthorID]
		details[i] = d
	}
	return details, nil
}

package shortlink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/foodgram/internal/model"
)

// RecipeFinder はレシピの存在確認に必要なインターフェース。
type RecipeFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Recipe, error)
}

// Resolver は短縮リンクの発行と解決を行う。
type Resolver struct {
	codec   *Codec
	recipes RecipeFinder
	baseURL string
	logger  *slog.Logger
}

// NewResolver はResolverを生成する。baseURLは末尾のスラッシュを含まないこと。
func NewResolver(codec *Codec, recipes RecipeFinder, baseURL string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{codec: codec, recipes: recipes, baseURL: baseURL, logger: logger}
}

// ShortURL はレシピの短縮URLを返す。レシピが存在しない場合はNotFoundエラー。
func (r *Resolver) ShortURL(ctx context.Context, recipeID int64) (string, error) {
	recipe, err := r.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return "", fmt.Errorf("failed to find recipe: %w", err)
	}
	if recipe == nil {
		return "", model.NewRecipeNotFoundError(recipeID)
	}

	code, err := r.codec.Encode(recipe.ID)
	if err != nil {
		return "", err
	}
	return r.baseURL + "/s/" + code, nil
}

// Resolve は短縮コードを正規のレシピURLに解決する。
// 不正なコード、または削除済みレシピのコードはShortLinkNotFoundエラー。
func (r *Resolver) Resolve(ctx context.Context, code string) (string, error) {
	id, err := r.codec.Decode(code)
	if err != nil {
		r.logger.Debug("invalid short link code", slog.String("code", code))
		return "", model.NewShortLinkNotFoundError(code)
	}

	recipe, err := r.recipes.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to find recipe: %w", err)
	}
	if recipe == nil {
		return "", model.NewShortLinkNotFoundError(code)
	}

	return CanonicalRecipeURL(r.baseURL, recipe.ID), nil
}

// CanonicalRecipeURL はレシピ詳細APIの正規URLを返す。
func CanonicalRecipeURL(baseURL string, recipeID int64) string {
	return fmt.Sprintf("%s/api/recipes/%d/", baseURL, recipeID)
}

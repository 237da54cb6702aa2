package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
	"github.com/hitoshi/foodgram/internal/security"
)

// 変更操作の種別
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// MaxNameLength はレシピ名の最大文字数。
const MaxNameLength = 200

// MutationObserver はレシピの変更を記録するインターフェース。
type MutationObserver interface {
	ObserveRecipeMutation(op string)
}

// Limits は入力値の上限。下限はいずれも1。
type Limits struct {
	CookingTimeMax int
	AmountMax      int
}

// IngredientInput はレシピに含める食材と分量の入力。
type IngredientInput struct {
	ID     int64
	Amount int
}

// CreateInput はレシピ作成の入力。
type CreateInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientInput
	Tags        []int64
}

// UpdateInput はレシピ更新の入力。Imageがnilの場合は既存の画像を維持する。
type UpdateInput struct {
	Name        string
	Text        string
	Image       *string
	CookingTime int
	Ingredients []IngredientInput
	Tags        []int64
}

// MutationService はレシピの作成・更新・削除サービス。
type MutationService struct {
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	query       *QueryService
	sanitizer   security.TextSanitizerService
	limits      Limits
	observer    MutationObserver
	logger      *slog.Logger
}

// NewMutationService はMutationServiceを生成する。observerはnilでもよい。
func NewMutationService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	tags repository.TagRepository,
	query *QueryService,
	sanitizer security.TextSanitizerService,
	limits Limits,
	observer MutationObserver,
	logger *slog.Logger,
) *MutationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MutationService{
		recipes:     recipes,
		ingredients: ingredients,
		tags:        tags,
		query:       query,
		sanitizer:   sanitizer,
		limits:      limits,
		observer:    observer,
		logger:      logger,
	}
}

// validated は検証済みの入力値。
type validated struct {
	name        string
	text        string
	cookingTime int
	ingredients []model.RecipeIngredient
	tagIDs      []int64
}

// Create はレシピを作成し、完全な表現を返す。
// 閲覧者に依存するフラグは全てfalse。
func (s *MutationService) Create(ctx context.Context, authorID int64, in CreateInput) (*Detail, error) {
	image := strings.TrimSpace(in.Image)
	v, err := s.validate(ctx, in.Name, in.Text, in.CookingTime, in.Ingredients, in.Tags, &image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        v.name,
		Image:       image,
		Text:        v.text,
		CookingTime: v.cookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, v.ingredients, v.tagIDs); err != nil {
		return nil, fmt.Errorf("レシピの作成に失敗しました: %w", err)
	}

	s.observe(OpCreate)
	s.logger.Info("recipe created",
		slog.Int64("recipe_id", recipe.ID),
		slog.Int64("author_id", authorID),
		slog.Int("ingredients", len(v.ingredients)),
		slog.Int("tags", len(v.tagIDs)),
	)

	return s.query.Get(ctx, model.AnonymousUserID, recipe.ID)
}

// Update はレシピを更新し、編集者から見た完全な表現を返す。
// 食材とタグは全て置き換える。
// 存在しない場合はNotFound、著者以外の場合はPermissionDeniedを検証より先に返す。
func (s *MutationService) Update(ctx context.Context, editorID, recipeID int64, in UpdateInput) (*Detail, error) {
	current, err := s.findOwned(ctx, editorID, recipeID)
	if err != nil {
		return nil, err
	}

	var image *string
	if in.Image != nil {
		trimmed := strings.TrimSpace(*in.Image)
		image = &trimmed
	}
	v, err := s.validate(ctx, in.Name, in.Text, in.CookingTime, in.Ingredients, in.Tags, image)
	if err != nil {
		return nil, err
	}

	current.Name = v.name
	current.Text = v.text
	current.CookingTime = v.cookingTime
	if image != nil {
		current.Image = *image
	}
	if err := s.recipes.Update(ctx, current, v.ingredients, v.tagIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewRecipeNotFoundError(recipeID)
		}
		return nil, fmt.Errorf("レシピの更新に失敗しました: %w", err)
	}

	s.observe(OpUpdate)
	s.logger.Info("recipe updated",
		slog.Int64("recipe_id", recipeID),
		slog.Int64("author_id", editorID),
	)

	return s.query.Get(ctx, editorID, recipeID)
}

// Delete はレシピを削除する。著者以外はPermissionDenied。
func (s *MutationService) Delete(ctx context.Context, editorID, recipeID int64) error {
	if _, err := s.findOwned(ctx, editorID, recipeID); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewRecipeNotFoundError(recipeID)
		}
		return fmt.Errorf("レシピの削除に失敗しました: %w", err)
	}

	s.observe(OpDelete)
	s.logger.Info("recipe deleted",
		slog.Int64("recipe_id", recipeID),
		slog.Int64("author_id", editorID),
	)
	return nil
}

func (s *MutationService) findOwned(ctx context.Context, editorID, recipeID int64) (*model.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("レシピの取得に失敗しました: %w", err)
	}
	if recipe == nil {
		return nil, model.NewRecipeNotFoundError(recipeID)
	}
	if recipe.AuthorID != editorID {
		return nil, model.NewPermissionDeniedError()
	}
	return recipe, nil
}

// validate は ingredients → tags → image → cooking_time → name → text の順に検証し、
// 最初に見つかった不備をフィールド付きのValidationErrorで返す。
// imageがnilの場合は画像の検証を行わない。
func (s *MutationService) validate(
	ctx context.Context,
	name, text string,
	cookingTime int,
	ingredients []IngredientInput,
	tagIDs []int64,
	image *string,
) (*validated, error) {
	rows, err := s.validateIngredients(ctx, ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.validateTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if image != nil && *image == "" {
		return nil, model.NewValidationError(model.FieldImage, "画像は必須です。")
	}
	if cookingTime < 1 || cookingTime > s.limits.CookingTimeMax {
		return nil, model.NewValidationError(model.FieldCookingTime,
			fmt.Sprintf("調理時間は1から%dの範囲で指定してください。", s.limits.CookingTimeMax))
	}

	name = s.sanitizer.Sanitize(name)
	if name == "" {
		return nil, model.NewValidationError(model.FieldName, "レシピ名は必須です。")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, model.NewValidationError(model.FieldName,
			fmt.Sprintf("レシピ名は%d文字以内で指定してください。", MaxNameLength))
	}

	text = s.sanitizer.Sanitize(text)
	if text == "" {
		return nil, model.NewValidationError(model.FieldText, "説明は必須です。")
	}

	return &validated{
		name:        name,
		text:        text,
		cookingTime: cookingTime,
		ingredients: rows,
		tagIDs:      tags,
	}, nil
}

func (s *MutationService) validateIngredients(ctx context.Context, in []IngredientInput) ([]model.RecipeIngredient, error) {
	if len(in) == 0 {
		return nil, model.NewValidationError(model.FieldIngredients, "食材を1つ以上指定してください。")
	}

	ids := make([]int64, 0, len(in))
	seen := make(map[int64]bool, len(in))
	for _, item := range in {
		if seen[item.ID] {
			return nil, model.NewValidationError(model.FieldIngredients,
				fmt.Sprintf("食材が重複しています: %d", item.ID))
		}
		seen[item.ID] = true
		if item.Amount < 1 || item.Amount > s.limits.AmountMax {
			return nil, model.NewValidationError(model.FieldIngredients,
				fmt.Sprintf("分量は1から%dの範囲で指定してください。", s.limits.AmountMax))
		}
		ids = append(ids, item.ID)
	}

	existing, err := s.ingredients.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("食材の確認に失敗しました: %w", err)
	}
	rows := make([]model.RecipeIngredient, 0, len(in))
	for _, item := range in {
		if !existing[item.ID] {
			return nil, model.NewValidationError(model.FieldIngredients,
				fmt.Sprintf("存在しない食材です: %d", item.ID))
		}
		rows = append(rows, model.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
	}
	return rows, nil
}

func (s *MutationService) validateTags(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, model.NewValidationError(model.FieldTags, "タグを1つ以上指定してください。")
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, model.NewValidationError(model.FieldTags,
				fmt.Sprintf("タグが重複しています: %d", id))
		}
		seen[id] = true
	}

	existing, err := s.tags.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("タグの確認に失敗しました: %w", err)
	}
	for _, id := range ids {
		if !existing[id] {
			return nil, model.NewValidationError(model.FieldTags,
				fmt.Sprintf("存在しないタグです: %d", id))
		}
	}
	return ids, nil
}

func (s *MutationService) observe(op string) {
	if s.observer != nil {
		s.observer.ObserveRecipeMutation(op)
	}
}

package handler

import (
	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/recipe"
)

// tagResponse はタグのAPIレスポンス。
type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ingredientResponse は食材のAPIレスポンス。
type ingredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// recipeIngredientResponse はレシピに含まれる食材（分量付き）のAPIレスポンス。
type recipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// userResponse はユーザーのAPIレスポンス。
type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// recipeResponse はレシピ詳細のAPIレスポンス。
type recipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// recipeShortResponse はレシピの簡略表現のAPIレスポンス。
type recipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// subscriptionResponse はフォロー中の著者のAPIレスポンス。
type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// shortLinkResponse は短縮リンク取得のAPIレスポンス。
type shortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ingredientAmountRequest はレシピ作成・更新リクエストの食材要素。
type ingredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// recipeRequest はレシピ作成・更新リクエストのボディ。
// 更新ではimageを省略でき、その場合は既存の画像を維持する。
type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       *string                   `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (req recipeRequest) ingredientInputs() []recipe.IngredientInput {
	inputs := make([]recipe.IngredientInput, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		inputs[i] = recipe.IngredientInput{ID: ing.ID, Amount: ing.Amount}
	}
	return inputs
}

func (req recipeRequest) createInput() recipe.CreateInput {
	in := recipe.CreateInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: req.ingredientInputs(),
		Tags:        req.Tags,
	}
	if req.Image != nil {
		in.Image = *req.Image
	}
	return in
}

func (req recipeRequest) updateInput() recipe.UpdateInput {
	return recipe.UpdateInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		Ingredients: req.ingredientInputs(),
		Tags:        req.Tags,
	}
}

// --- 変換 ---

func toTagResponse(t model.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toTagResponses(tags []model.Tag) []tagResponse {
	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = toTagResponse(t)
	}
	return out
}

func toIngredientResponse(ing model.Ingredient) ingredientResponse {
	return ingredientResponse{ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
}

func toIngredientResponses(ings []model.Ingredient) []ingredientResponse {
	out := make([]ingredientResponse, len(ings))
	for i, ing := range ings {
		out[i] = toIngredientResponse(ing)
	}
	return out
}

func toUserResponse(p model.UserProfile) userResponse {
	return userResponse{
		ID:           p.ID,
		Email:        p.Email,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

func toRecipeResponse(d recipe.Detail) recipeResponse {
	ings := make([]recipeIngredientResponse, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		ings[i] = recipeIngredientResponse{
			ID:              ing.ID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          ing.Amount,
		}
	}
	return recipeResponse{
		ID:               d.ID,
		Tags:             toTagResponses(d.Tags),
		Author:           toUserResponse(d.Author),
		Ingredients:      ings,
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            d.Image,
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
}

func toRecipeResponses(details []recipe.Detail) []recipeResponse {
	out := make([]recipeResponse, len(details))
	for i, d := range details {
		out[i] = toRecipeResponse(d)
	}
	return out
}

func toRecipeShortResponse(r model.RecipeShort) recipeShortResponse {
	return recipeShortResponse{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toSubscriptionResponse(a model.AuthorWithRecipes) subscriptionResponse {
	recipes := make([]recipeShortResponse, len(a.Recipes))
	for i, r := range a.Recipes {
		recipes[i] = toRecipeShortResponse(r)
	}
	return subscriptionResponse{
		userResponse: toUserResponse(a.UserProfile),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}

func toSubscriptionResponses(authors []model.AuthorWithRecipes) []subscriptionResponse {
	out := make([]subscriptionResponse, len(authors))
	for i, a := range authors {
		out[i] = toSubscriptionResponse(a)
	}
	return out
}

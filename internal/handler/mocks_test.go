package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/foodgram/internal/middleware"
	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/recipe"
	"github.com/hitoshi/foodgram/internal/shoplist"
	"github.com/hitoshi/foodgram/internal/subscription"
	"github.com/hitoshi/foodgram/internal/user"
)

// --- モック定義 ---

type mockRecipeQuery struct {
	listFn func(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Page) (*recipe.ListResult, error)
	getFn  func(ctx context.Context, viewerID, id int64) (*recipe.Detail, error)
}

func (m *mockRecipeQuery) List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Page) (*recipe.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewerID, filter, page)
	}
	return &recipe.ListResult{Recipes: []recipe.Detail{}}, nil
}

func (m *mockRecipeQuery) Get(ctx context.Context, viewerID, id int64) (*recipe.Detail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, viewerID, id)
	}
	return nil, model.NewRecipeNotFoundError(id)
}

type mockRecipeMutation struct {
	createFn func(ctx context.Context, authorID int64, in recipe.CreateInput) (*recipe.Detail, error)
	updateFn func(ctx context.Context, editorID, recipeID int64, in recipe.UpdateInput) (*recipe.Detail, error)
	deleteFn func(ctx context.Context, editorID, recipeID int64) error
}

func (m *mockRecipeMutation) Create(ctx context.Context, authorID int64, in recipe.CreateInput) (*recipe.Detail, error) {
	if m.createFn != nil {
		return m.createFn(ctx, authorID, in)
	}
	return nil, nil
}

func (m *mockRecipeMutation) Update(ctx context.Context, editorID, recipeID int64, in recipe.UpdateInput) (*recipe.Detail, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, editorID, recipeID, in)
	}
	return nil, nil
}

func (m *mockRecipeMutation) Delete(ctx context.Context, editorID, recipeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, editorID, recipeID)
	}
	return nil
}

type mockShortLinks struct {
	shortURLFn func(ctx context.Context, recipeID int64) (string, error)
	resolveFn  func(ctx context.Context, code string) (string, error)
}

func (m *mockShortLinks) ShortURL(ctx context.Context, recipeID int64) (string, error) {
	if m.shortURLFn != nil {
		return m.shortURLFn(ctx, recipeID)
	}
	return "", nil
}

func (m *mockShortLinks) Resolve(ctx context.Context, code string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, code)
	}
	return "", model.NewShortLinkNotFoundError(code)
}

type mockShoppingList struct {
	exportFn func(ctx context.Context, userID int64, format shoplist.Format) (*shoplist.Report, error)
}

func (m *mockShoppingList) Export(ctx context.Context, userID int64, format shoplist.Format) (*shoplist.Report, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx, userID, format)
	}
	return &shoplist.Report{
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Body:        shoplist.RenderText(nil),
	}, nil
}

type mockToggler struct {
	addFn    func(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error)
	removeFn func(ctx context.Context, userID, recipeID int64) error
}

func (m *mockToggler) Add(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, recipeID)
	}
	return &recipeShortResponse{ID: recipeID}, nil
}

func (m *mockToggler) Remove(ctx context.Context, userID, recipeID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, recipeID)
	}
	return nil
}

type mockCatalog struct {
	listTagsFn          func(ctx context.Context) ([]model.Tag, error)
	getTagFn            func(ctx context.Context, id int64) (*model.Tag, error)
	searchIngredientsFn func(ctx context.Context, prefix string) ([]model.Ingredient, error)
	getIngredientFn     func(ctx context.Context, id int64) (*model.Ingredient, error)
}

func (m *mockCatalog) ListTags(ctx context.Context) ([]model.Tag, error) {
	if m.listTagsFn != nil {
		return m.listTagsFn(ctx)
	}
	return []model.Tag{}, nil
}

func (m *mockCatalog) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	if m.getTagFn != nil {
		return m.getTagFn(ctx, id)
	}
	return nil, model.NewTagNotFoundError(id)
}

func (m *mockCatalog) SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	if m.searchIngredientsFn != nil {
		return m.searchIngredientsFn(ctx, prefix)
	}
	return []model.Ingredient{}, nil
}

func (m *mockCatalog) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	if m.getIngredientFn != nil {
		return m.getIngredientFn(ctx, id)
	}
	return nil, model.NewIngredientNotFoundError(id)
}

type mockSubscriptionService struct {
	subscribeFn   func(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.AuthorWithRecipes, error)
	unsubscribeFn func(ctx context.Context, userID, authorID int64) error
	listFn        func(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*subscription.ListResult, error)
}

func (m *mockSubscriptionService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.AuthorWithRecipes, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, userID, authorID, recipesLimit)
	}
	return &model.AuthorWithRecipes{}, nil
}

func (m *mockSubscriptionService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if m.unsubscribeFn != nil {
		return m.unsubscribeFn(ctx, userID, authorID)
	}
	return nil
}

func (m *mockSubscriptionService) List(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*subscription.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, recipesLimit)
	}
	return &subscription.ListResult{Authors: []model.AuthorWithRecipes{}}, nil
}

type mockUserService struct {
	profileFn  func(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error)
	listFn     func(ctx context.Context, viewerID int64, page model.Page) (*user.ListResult, error)
	withdrawFn func(ctx context.Context, userID int64) error
}

func (m *mockUserService) List(ctx context.Context, viewerID int64, page model.Page) (*user.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, viewerID, page)
	}
	return &user.ListResult{Users: []model.UserProfile{}}, nil
}

func (m *mockUserService) Profile(ctx context.Context, viewerID, userID int64) (*model.UserProfile, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, viewerID, userID)
	}
	return &model.UserProfile{User: model.User{ID: userID}}, nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID int64) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID int64) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// sampleDetail はテスト用のレシピ詳細を返す。
func sampleDetail(id int64) *recipe.Detail {
	return &recipe.Detail{
		RecipeWithState: model.RecipeWithState{
			Recipe: model.Recipe{
				ID:          id,
				AuthorID:    7,
				Name:        "Pancakes",
				Image:       "data:image/png;base64,AAAA",
				Text:        "Mix and fry.",
				CookingTime: 20,
			},
			IsFavorited: true,
		},
		Author: model.UserProfile{User: model.User{ID: 7, Username: "chef", Email: "chef@example.com"}},
		Ingredients: []model.IngredientAmount{
			{ID: 1, Name: "flour", MeasurementUnit: "g", Amount: 200},
		},
		Tags: []model.Tag{{ID: 2, Name: "Breakfast", Slug: "breakfast"}},
	}
}

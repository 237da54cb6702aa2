package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hitoshi/foodgram/internal/middleware"
	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/recipe"
	"github.com/hitoshi/foodgram/internal/shoplist"
)

// RecipeQueryServiceInterface はレシピ参照に必要なサービスインターフェース。
type RecipeQueryServiceInterface interface {
	List(ctx context.Context, viewerID int64, filter model.RecipeFilter, page model.Page) (*recipe.ListResult, error)
	Get(ctx context.Context, viewerID, id int64) (*recipe.Detail, error)
}

// RecipeMutationServiceInterface はレシピの作成・更新・削除に必要なサービスインターフェース。
type RecipeMutationServiceInterface interface {
	Create(ctx context.Context, authorID int64, in recipe.CreateInput) (*recipe.Detail, error)
	Update(ctx context.Context, editorID, recipeID int64, in recipe.UpdateInput) (*recipe.Detail, error)
	Delete(ctx context.Context, editorID, recipeID int64) error
}

// ShortLinkServiceInterface は短縮リンクの発行と解決に必要なサービスインターフェース。
type ShortLinkServiceInterface interface {
	ShortURL(ctx context.Context, recipeID int64) (string, error)
	Resolve(ctx context.Context, code string) (string, error)
}

// ShoppingListServiceInterface は買い物リストのダウンロードに必要なサービスインターフェース。
type ShoppingListServiceInterface interface {
	Export(ctx context.Context, userID int64, format shoplist.Format) (*shoplist.Report, error)
}

// RecipeHandler はレシピ関連のHTTPハンドラー。
type RecipeHandler struct {
	query     RecipeQueryServiceInterface
	mutation  RecipeMutationServiceInterface
	links     ShortLinkServiceInterface
	shopping  ShoppingListServiceInterface
	paginator Paginator
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(
	query RecipeQueryServiceInterface,
	mutation RecipeMutationServiceInterface,
	links ShortLinkServiceInterface,
	shopping ShoppingListServiceInterface,
	paginator Paginator,
) *RecipeHandler {
	return &RecipeHandler{
		query:     query,
		mutation:  mutation,
		links:     links,
		shopping:  shopping,
		paginator: paginator,
	}
}

// ListRecipes はレシピ一覧を返す。
// GET /api/recipes?author=&tags=&is_favorited=&is_in_shopping_cart=&page=&limit=
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerFromContext(r.Context())
	values := r.URL.Query()
	page := h.paginator.Parse(values)

	result, err := h.query.List(r.Context(), viewerID, recipe.ParseFilter(values), page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.paginator.Envelope(r, result.Count, page, toRecipeResponses(result.Recipes)))
}

// GetRecipe はレシピ詳細を返す。
// GET /api/recipes/{id}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	detail, err := h.query.Get(r.Context(), middleware.ViewerFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(*detail))
}

// CreateRecipe はレシピを作成する。
// POST /api/recipes
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	detail, err := h.mutation.Create(r.Context(), userID, req.createInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecipeResponse(*detail))
}

// UpdateRecipe はレシピを更新する。著者のみ実行できる。
// PATCH /api/recipes/{id}
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	detail, err := h.mutation.Update(r.Context(), userID, id, req.updateInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(*detail))
}

// DeleteRecipe はレシピを削除する。著者のみ実行できる。
// DELETE /api/recipes/{id}
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.mutation.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLink はレシピの短縮リンクを返す。
// GET /api/recipes/{id}/get-link
func (h *RecipeHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	link, err := h.links.ShortURL(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, shortLinkResponse{ShortLink: link})
}

// DownloadShoppingCart は買い物リストを集計したファイルを返す。
// GET /api/recipes/download_shopping_cart?format=txt|csv
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	format, ok := shoplist.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		handleServiceError(w, r, model.NewInvalidRequestError("formatはtxtまたはcsvを指定してください"))
		return
	}

	report, err := h.shopping.Export(r.Context(), userID, format)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Body)
}

package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/foodgram/internal/model"
)

// CatalogServiceInterface はタグ・食材の参照に必要なサービスインターフェース。
type CatalogServiceInterface interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
}

// CatalogHandler はタグ・食材のHTTPハンドラー。いずれもページネーションしない。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListTags はタグ一覧を返す。
// GET /api/tags
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponses(tags))
}

// GetTag はタグを返す。
// GET /api/tags/{id}
func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	tag, err := h.service.GetTag(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(*tag))
}

// ListIngredients は名前の前方一致で食材を検索する。
// GET /api/ingredients?name=<prefix>
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ings, err := h.service.SearchIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponses(ings))
}

// GetIngredient は食材を返す。
// GET /api/ingredients/{id}
func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	ing, err := h.service.GetIngredient(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(*ing))
}

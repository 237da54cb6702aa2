package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/foodgram/internal/model"
)

func TestCatalogHandler_ListTags_NotPaginated(t *testing.T) {
	h := NewCatalogHandler(&mockCatalog{
		listTagsFn: func(ctx context.Context) ([]model.Tag, error) {
			return []model.Tag{{ID: 1, Name: "Breakfast", Slug: "breakfast"}, {ID: 2, Name: "Dinner", Slug: "dinner"}}, nil
		},
	})

	w := httptest.NewRecorder()
	h.ListTags(w, httptest.NewRequest(http.MethodGet, "/api/tags", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var tags []tagResponse
	if err := json.NewDecoder(w.Body).Decode(&tags); err != nil {
		t.Fatalf("response should be a plain array: %v", err)
	}
	if len(tags) != 2 || tags[1].Slug != "dinner" {
		t.Errorf("tags = %+v", tags)
	}
}

func TestCatalogHandler_GetTag_NotFound(t *testing.T) {
	h := NewCatalogHandler(&mockCatalog{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/tags/9", nil), "id", "9")
	w := httptest.NewRecorder()
	h.GetTag(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeTagNotFound {
		t.Errorf("code = %q", body["code"])
	}
}

func TestCatalogHandler_ListIngredients_PassesPrefix(t *testing.T) {
	h := NewCatalogHandler(&mockCatalog{
		searchIngredientsFn: func(ctx context.Context, prefix string) ([]model.Ingredient, error) {
			if prefix != "fl" {
				t.Errorf("prefix = %q, want fl", prefix)
			}
			return []model.Ingredient{{ID: 1, Name: "flour", MeasurementUnit: "g"}}, nil
		},
	})

	w := httptest.NewRecorder()
	h.ListIngredients(w, httptest.NewRequest(http.MethodGet, "/api/ingredients?name=fl", nil))

	var ings []map[string]interface{}
	json.NewDecoder(w.Body).Decode(&ings)
	if len(ings) != 1 || ings[0]["measurement_unit"] != "g" {
		t.Errorf("ingredients = %v", ings)
	}
}

func TestCatalogHandler_GetIngredient(t *testing.T) {
	h := NewCatalogHandler(&mockCatalog{
		getIngredientFn: func(ctx context.Context, id int64) (*model.Ingredient, error) {
			if id == 1 {
				return &model.Ingredient{ID: 1, Name: "flour", MeasurementUnit: "g"}, nil
			}
			return nil, errors.New("db down")
		},
	})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/1", nil), "id", "1")
	w := httptest.NewRecorder()
	h.GetIngredient(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	req = withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/ingredients/2", nil), "id", "2")
	w = httptest.NewRecorder()
	h.GetIngredient(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body["code"])
	}
}

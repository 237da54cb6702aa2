package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/foodgram/internal/model"
)

func TestMembershipHandler_Add_ReturnsShortView(t *testing.T) {
	toggler := &mockToggler{
		addFn: func(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error) {
			if userID != 3 || recipeID != 10 {
				t.Errorf("user/recipe = %d/%d, want 3/10", userID, recipeID)
			}
			return &recipeShortResponse{ID: 10, Name: "Soup", Image: "img", CookingTime: 15}, nil
		},
	}
	h := NewMembershipHandler(toggler)

	req := withChiURLParam(withUserID(httptest.NewRequest(http.MethodPost, "/api/recipes/10/favorite", nil), 3), "id", "10")
	w := httptest.NewRecorder()
	h.Add(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var body map[string]interface{}
	json.NewDecoder(w.Body).Decode(&body)
	if body["id"] != float64(10) || body["name"] != "Soup" || body["cooking_time"] != float64(15) {
		t.Errorf("body = %v", body)
	}
	if len(body) != 4 {
		t.Errorf("short view should have exactly 4 fields, got %v", body)
	}
}

func TestMembershipHandler_ConflictsAreBadRequest(t *testing.T) {
	tests := []struct {
		name     string
		add      bool
		err      error
		wantCode string
	}{
		{"duplicate add", true, model.NewAlreadyExistsError(model.MembershipFavorite), model.ErrCodeAlreadyExists},
		{"remove missing", false, model.NewNotInListError(model.MembershipCart), model.ErrCodeNotInList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toggler := &mockToggler{
				addFn: func(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error) {
					return nil, tt.err
				},
				removeFn: func(ctx context.Context, userID, recipeID int64) error { return tt.err },
			}
			h := NewMembershipHandler(toggler)

			method := http.MethodDelete
			if tt.add {
				method = http.MethodPost
			}
			req := withChiURLParam(withUserID(httptest.NewRequest(method, "/api/recipes/10/shopping_cart", nil), 3), "id", "10")
			w := httptest.NewRecorder()
			if tt.add {
				h.Add(w, req)
			} else {
				h.Remove(w, req)
			}

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if body := parseAPIErrorResponse(t, w); body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
		})
	}
}

func TestMembershipHandler_Remove_NoContent(t *testing.T) {
	h := NewMembershipHandler(&mockToggler{})

	req := withChiURLParam(withUserID(httptest.NewRequest(http.MethodDelete, "/api/recipes/10/favorite", nil), 3), "id", "10")
	w := httptest.NewRecorder()
	h.Remove(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestMembershipHandler_Add_MissingRecipe(t *testing.T) {
	h := NewMembershipHandler(&mockToggler{
		addFn: func(ctx context.Context, userID, recipeID int64) (*recipeShortResponse, error) {
			return nil, model.NewRecipeNotFoundError(recipeID)
		},
	})

	req := withChiURLParam(withUserID(httptest.NewRequest(http.MethodPost, "/api/recipes/404/favorite", nil), 3), "id", "404")
	w := httptest.NewRecorder()
	h.Add(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

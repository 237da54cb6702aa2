package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/subscription"
)

func sampleAuthor(id int64) model.AuthorWithRecipes {
	return model.AuthorWithRecipes{
		UserProfile:  model.UserProfile{User: model.User{ID: id, Username: "author"}, IsSubscribed: true},
		RecipesCount: 12,
		Recipes:      []model.RecipeShort{{ID: 1, Name: "A", CookingTime: 5}},
	}
}

func TestSubscriptionHandler_ListSubscriptions(t *testing.T) {
	svc := &mockSubscriptionService{
		listFn: func(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*subscription.ListResult, error) {
			if userID != 3 || recipesLimit != 2 || page.Limit != 6 {
				t.Errorf("user/limit/page = %d/%d/%+v", userID, recipesLimit, page)
			}
			return &subscription.ListResult{Count: 1, Authors: []model.AuthorWithRecipes{sampleAuthor(9)}}, nil
		},
	}
	h := NewSubscriptionHandler(svc, testPaginator)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/users/subscriptions?recipes_limit=2", nil), 3)
	w := httptest.NewRecorder()
	h.ListSubscriptions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Count   int                      `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	if body.Count != 1 || len(body.Results) != 1 {
		t.Fatalf("body = %+v", body)
	}
	author := body.Results[0]
	if author["id"] != float64(9) || author["recipes_count"] != float64(12) || author["is_subscribed"] != true {
		t.Errorf("author = %v", author)
	}
	if recipes, ok := author["recipes"].([]interface{}); !ok || len(recipes) != 1 {
		t.Errorf("recipes = %v", author["recipes"])
	}
}

func TestSubscriptionHandler_InvalidRecipesLimitUsesDefault(t *testing.T) {
	for _, raw := range []string{"", "0", "-3", "abc"} {
		svc := &mockSubscriptionService{
			listFn: func(ctx context.Context, userID int64, page model.Page, recipesLimit int) (*subscription.ListResult, error) {
				if recipesLimit != 0 {
					t.Errorf("recipes_limit=%q: got %d, want 0 (default)", raw, recipesLimit)
				}
				return &subscription.ListResult{Authors: []model.AuthorWithRecipes{}}, nil
			},
		}
		h := NewSubscriptionHandler(svc, testPaginator)
		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/users/subscriptions?recipes_limit="+raw, nil), 3)
		h.ListSubscriptions(httptest.NewRecorder(), req)
	}
}

func TestSubscriptionHandler_Subscribe(t *testing.T) {
	svc := &mockSubscriptionService{
		subscribeFn: func(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.AuthorWithRecipes, error) {
			if userID == authorID {
				return nil, model.NewSubscriptionError()
			}
			a := sampleAuthor(authorID)
			return &a, nil
		},
	}
	h := NewSubscriptionHandler(svc, testPaginator)

	req := withChiURLParam(withUserID(httptest.NewRequest(http.MethodPost, "/api/users/9/subscribe", nil), 3), "id", "9")
	w := httptest.NewRecorder()
	h.Subscribe(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}

	req = withChiURLParam(withUserID(httptest.NewRequest(http.MethodPost, "/api/users/3/subscribe", nil), 3), "id", "3")
	w = httptest.NewRecorder()
	h.Subscribe(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self subscribe: status = %d, want 400", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeSubscription {
		t.Errorf("code = %q, want SUBSCRIPTION_ERROR", body["code"])
	}
}

func TestSubscriptionHandler_Unsubscribe(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"not subscribed", model.NewSubscriptionNotFoundError(9), http.StatusBadRequest},
		{"unknown author", model.NewUserNotFoundError(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSubscriptionHandler(&mockSubscriptionService{
				unsubscribeFn: func(ctx context.Context, userID, authorID int64) error { return tt.err },
			}, testPaginator)

			req := withChiURLParam(withUserID(httptest.NewRequest(http.MethodDelete, "/api/users/9/subscribe", nil), 3), "id", "9")
			w := httptest.NewRecorder()
			h.Unsubscribe(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

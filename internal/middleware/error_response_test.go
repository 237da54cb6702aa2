package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/foodgram/internal/model"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var raw map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return raw
}

// TestWriteErrorResponse_DomainErrors はドメインエラーがそのままの内容で書き出されることを検証する。
func TestWriteErrorResponse_DomainErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		err       *model.APIError
		wantField interface{}
	}{
		{"validation", http.StatusBadRequest, model.NewValidationError(model.FieldIngredients, "duplicate ingredient"), "ingredients"},
		{"permission", http.StatusForbidden, model.NewPermissionDeniedError(), nil},
		{"recipe not found", http.StatusNotFound, model.NewRecipeNotFoundError(9), nil},
		{"already in cart", http.StatusBadRequest, model.NewAlreadyExistsError(model.MembershipCart), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorResponse(w, tt.status, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			raw := decodeErrorBody(t, w)
			if raw["code"] != tt.err.Code || raw["message"] != tt.err.Message {
				t.Errorf("body = %v, want code %s", raw, tt.err.Code)
			}
			if raw["category"] != tt.err.Category || raw["action"] != tt.err.Action {
				t.Errorf("category/action = %v/%v", raw["category"], raw["action"])
			}
			if field, ok := raw["field"]; tt.wantField == nil && ok {
				t.Errorf("field should be omitted, got %v", field)
			} else if tt.wantField != nil && field != tt.wantField {
				t.Errorf("field = %v, want %v", field, tt.wantField)
			}
		})
	}
}

// TestWriteInternalServerError は内部エラーの詳細を含まない汎用レスポンスを検証する。
func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	raw := decodeErrorBody(t, w)
	if raw["code"] != ErrCodeInternal || raw["category"] != "system" {
		t.Errorf("body = %v", raw)
	}
	if raw["action"] == "" {
		t.Error("action should not be empty")
	}
}

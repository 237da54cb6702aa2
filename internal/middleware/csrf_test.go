package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCSRFHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	mw := NewCSRFMiddleware(CSRFConfig{CookieSecure: false, CookieDomain: ""})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFMiddleware_SafeMethods_PassThroughWithoutToken(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		called := false
		handler := newCSRFHandler(t, &called)

		req := httptest.NewRequest(method, "/api/recipes", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "s"})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if !called {
			t.Errorf("%s: handler should have been called", method)
		}
	}
}

func TestCSRFMiddleware_CookieSession_RequiresMatchingToken(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
	}{
		{"no csrf cookie", "", "tok", http.StatusForbidden},
		{"no header", "tok", "", http.StatusForbidden},
		{"mismatch", "tok", "other", http.StatusForbidden},
		{"match", "tok", "tok", http.StatusOK},
	}

	for _, tt := range tests {
		for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodDelete} {
			t.Run(tt.name+"/"+method, func(t *testing.T) {
				called := false
				handler := newCSRFHandler(t, &called)

				req := httptest.NewRequest(method, "/api/recipes/1/favorite", nil)
				req.AddCookie(&http.Cookie{Name: "session_id", Value: "s"})
				if tt.cookie != "" {
					req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
				}
				if tt.header != "" {
					req.Header.Set(csrfHeaderName, tt.header)
				}
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				if w.Result().StatusCode != tt.wantStatus {
					t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
				}
				if called != (tt.wantStatus == http.StatusOK) {
					t.Errorf("handler called = %v", called)
				}
			})
		}
	}
}

func TestCSRFMiddleware_TokenAuthSkipsCheck(t *testing.T) {
	called := false
	handler := newCSRFHandler(t, &called)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
	req.Header.Set("Authorization", "Token abc")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "s"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("expected token-authenticated request to skip CSRF validation")
	}
}

func TestCSRFMiddleware_NoSessionCookieSkipsCheck(t *testing.T) {
	called := false
	handler := newCSRFHandler(t, &called)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("expected request without session cookie to reach the handler")
	}
}

func TestCSRFMiddleware_ForbiddenBodyIsUnifiedFormat(t *testing.T) {
	called := false
	handler := newCSRFHandler(t, &called)

	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/1", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "s"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "CSRF_VALIDATION_FAILED" || body.Category != "auth" {
		t.Errorf("body = %+v", body)
	}
}

func TestCSRFMiddleware_GETRequest_SetsCSRFCookie(t *testing.T) {
	called := false
	handler := newCSRFHandler(t, &called)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			csrfCookie = c
		}
	}
	if csrfCookie == nil {
		t.Fatal("expected CSRF cookie to be set")
	}
	if csrfCookie.HttpOnly {
		t.Error("CSRF cookie must be readable by the frontend")
	}
	if len(csrfCookie.Value) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(csrfCookie.Value))
	}
}

func TestCSRFMiddleware_GETRequest_ExistingCookie_DoesNotReplace(t *testing.T) {
	called := false
	handler := newCSRFHandler(t, &called)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			t.Error("CSRF cookie should not be re-set when already present")
		}
	}
}

func TestCSRFTokenHandler_SetsTokenCookieAndReturnsJSON(t *testing.T) {
	h := NewCSRFTokenHandler(CSRFConfig{CookieSecure: false, CookieDomain: "example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	var csrfCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == csrfCookieName {
			csrfCookie = c
		}
	}
	if csrfCookie == nil || csrfCookie.Value != body.Token || body.Token == "" {
		t.Errorf("cookie = %+v, token = %q; should match and be non-empty", csrfCookie, body.Token)
	}
}

func TestCSRFTokenHandler_ExistingCookie_ReturnsSameToken(t *testing.T) {
	h := NewCSRFTokenHandler(CSRFConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing-csrf-token"})
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Token != "existing-csrf-token" {
		t.Errorf("token = %q, want %q", body.Token, "existing-csrf-token")
	}
}

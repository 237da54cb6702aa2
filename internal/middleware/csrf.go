package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/foodgram/internal/model"
)

const (
	// csrfCookieName はフロントエンドのJavaScriptから読み取るため HttpOnly にしない。
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfTokenTTL   = 24 * time.Hour
)

// CSRFConfig はCSRFミドルウェアの設定。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// cookie は発行するトークンCookieを組み立てる。
func (c CSRFConfig) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.CookieDomain,
		MaxAge:   int(csrfTokenTTL / time.Second),
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// issue はトークンCookieが無い場合に新規発行し、有効なトークンを返す。
func (c CSRFConfig) issue(w http.ResponseWriter, r *http.Request) (string, error) {
	if existing, err := r.Cookie(csrfCookieName); err == nil && existing.Value != "" {
		return existing.Value, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	http.SetCookie(w, c.cookie(token))
	return token, nil
}

// NewCSRFMiddleware はダブルサブミット方式のCSRF対策ミドルウェアを返す。
//
// 読み取り系メソッドではトークンCookieを発行するのみで検証しない。
// 更新系メソッドはセッションCookieで認証されるリクエストに限り、
// トークンCookieと X-CSRF-Token ヘッダーの一致を要求する。
// Authorization: Token で認証するクライアントは対象外。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if _, err := config.issue(w, r); err != nil {
					slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				}
			default:
				if reason := csrfRejection(r); reason != "" {
					slog.Warn("CSRF validation failed",
						slog.String("reason", reason),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
						Code:     "CSRF_VALIDATION_FAILED",
						Message:  "CSRFトークンの検証に失敗しました。",
						Category: "auth",
						Action:   "ページを再読み込みしてから再度お試しください。",
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// csrfRejection は検証失敗の理由を返す。検証不要または成功時は空文字列。
func csrfRejection(r *http.Request) string {
	if r.Header.Get("Authorization") != "" {
		return ""
	}
	if session, err := r.Cookie(sessionCookieName); err != nil || session.Value == "" {
		return ""
	}

	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return "missing cookie token"
	}
	header := r.Header.Get(csrfHeaderName)
	if header == "" {
		return "missing header token"
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return "token mismatch"
	}
	return ""
}

// NewCSRFTokenHandler は GET /api/csrf-token のハンドラーを返す。
// 既存のトークンCookieがあればその値を返す。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := config.issue(w, r)
		if err != nil {
			slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
			WriteInternalServerError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}

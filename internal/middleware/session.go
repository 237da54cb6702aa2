// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/foodgram/internal/model"
)

const (
	sessionCookieName = "session_id"

	// authorizationScheme は Authorization ヘッダーでセッションIDを渡す際のスキーム。
	authorizationScheme = "Token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// sessionIDFromRequest はCookieまたはAuthorizationヘッダーからセッションIDを取り出す。
// 両方ある場合はAuthorizationヘッダーを優先する。
func sessionIDFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, authorizationScheme) {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// resolveUserID はリクエストのセッションを検証し、ユーザーIDを返す。
// セッションがない、無効、期限切れの場合はfalseを返す。
func resolveUserID(r *http.Request, finder SessionFinder) (int64, bool) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		return 0, false
	}

	session, err := finder.FindByID(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to find session",
			slog.String("error", err.Error()),
		)
		return 0, false
	}
	if session == nil || session.UserID == model.AnonymousUserID {
		return 0, false
	}
	noteUserID(r.Context(), session.UserID)
	return session.UserID, true
}

// NewOptionalSessionMiddleware はセッションを解決するミドルウェアを返す。
// セッションIDは session_id Cookie または「Authorization: Token <id>」から読み取る。
// 有効なセッションがあればユーザーIDを注入し、なければ匿名のまま次へ渡す。
// 認証必須のルートは後段に RequireUser を置く。
func NewOptionalSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := resolveUserID(r, sessionFinder); ok {
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser は認証任意のミドルウェアの後段で、匿名リクエストを401で拒否する。
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := UserIDFromContext(r.Context()); err != nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過した認証済みリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok || userID == model.AnonymousUserID {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ViewerFromContext は閲覧者のユーザーIDを返す。匿名の場合はmodel.AnonymousUserID。
func ViewerFromContext(ctx context.Context) int64 {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return model.AnonymousUserID
	}
	return userID
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

package middleware

import (
	"net/http"
	"strings"
)

var (
	corsAllowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}, ", ")
	corsAllowHeaders  = strings.Join([]string{"Content-Type", "Authorization", csrfHeaderName}, ", ")
	corsExposeHeaders = strings.Join([]string{"Content-Disposition", requestIDHeader}, ", ")
)

// NewCORSMiddleware はフロントエンドのオリジンからのクロスオリジン呼び出しを許可する。
// Originヘッダーが allowedOrigin と一致する場合のみ許可ヘッダーを付与する。
// allowedOrigin が空の場合はCORSヘッダーを一切付与しない。
// OPTIONSプリフライトには後段を呼ばずに204で応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if allowedOrigin != "" && (origin == "" || origin == allowedOrigin) {
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", corsAllowMethods)
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

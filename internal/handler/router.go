package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/foodgram/internal/middleware"
	"github.com/hitoshi/foodgram/internal/model"
)

// HealthChecker はヘルスチェックで依存先の疎通を確認するインターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.HTTPStatusRecorder
	Logger            *slog.Logger

	HealthChecker HealthChecker
	Paginator     Paginator

	// レシピ
	RecipeQuery    RecipeQueryServiceInterface
	RecipeMutation RecipeMutationServiceInterface
	ShortLinks     ShortLinkServiceInterface
	ShoppingList   ShoppingListServiceInterface

	// お気に入り・買い物リスト
	Favorites    MembershipToggler
	ShoppingCart MembershipToggler

	// タグ・食材
	CatalogService CatalogServiceInterface

	// フォロー
	SubscriptionService SubscriptionServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS
//	→ CSRF → OptionalSession → RateLimit(General)
//
// 認証必須のルートはさらに RequireUser を通す。
// /health と /s/{code} はセッションとレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	recipeHandler := NewRecipeHandler(deps.RecipeQuery, deps.RecipeMutation, deps.ShortLinks, deps.ShoppingList, deps.Paginator)
	favoriteHandler := NewMembershipHandler(deps.Favorites)
	cartHandler := NewMembershipHandler(deps.ShoppingCart)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	subHandler := NewSubscriptionHandler(deps.SubscriptionService, deps.Paginator)
	userHandler := NewUserHandler(deps.UserService, deps.Paginator)
	linkHandler := NewShortLinkHandler(deps.ShortLinks)

	// --- 認証不要のルート ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	r.Get("/s/{code}", linkHandler.Redirect)
	r.Get("/s/{code}/", linkHandler.Redirect)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

		// タグ・食材（参照のみ）
		r.Get("/tags", catalogHandler.ListTags)
		r.Get("/tags/{id}", catalogHandler.GetTag)
		r.Get("/ingredients", catalogHandler.ListIngredients)
		r.Get("/ingredients/{id}", catalogHandler.GetIngredient)

		// レシピ
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.ListRecipes)
			r.With(middleware.RequireUser, deps.RateLimiter.WriteMiddleware()).Post("/", recipeHandler.CreateRecipe)
			r.With(middleware.RequireUser).Get("/download_shopping_cart", recipeHandler.DownloadShoppingCart)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recipeHandler.GetRecipe)
				r.Get("/get-link", recipeHandler.GetLink)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireUser)

					r.With(deps.RateLimiter.WriteMiddleware()).Patch("/", recipeHandler.UpdateRecipe)
					r.With(deps.RateLimiter.WriteMiddleware()).Delete("/", recipeHandler.DeleteRecipe)

					r.Post("/favorite", favoriteHandler.Add)
					r.Delete("/favorite", favoriteHandler.Remove)
					r.Post("/shopping_cart", cartHandler.Add)
					r.Delete("/shopping_cart", cartHandler.Remove)
				})
			})
		})

		// ユーザー・フォロー
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)

				r.Get("/me", userHandler.Me)
				r.Delete("/me", userHandler.Withdraw)
				r.Get("/subscriptions", subHandler.ListSubscriptions)
				r.Post("/{id}/subscribe", subHandler.Subscribe)
				r.Delete("/{id}/subscribe", subHandler.Unsubscribe)
			})
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUser)
		})
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
					Code:     "SERVICE_UNAVAILABLE",
					Message:  "データベースに接続できません。",
					Category: "system",
					Action:   "しばらく待ってから再度お試しください。",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

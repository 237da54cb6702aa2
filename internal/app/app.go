package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/foodgram/internal/catalog"
	"github.com/hitoshi/foodgram/internal/config"
	"github.com/hitoshi/foodgram/internal/database"
	"github.com/hitoshi/foodgram/internal/handler"
	"github.com/hitoshi/foodgram/internal/logger"
	"github.com/hitoshi/foodgram/internal/membership"
	"github.com/hitoshi/foodgram/internal/metrics"
	"github.com/hitoshi/foodgram/internal/middleware"
	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/recipe"
	"github.com/hitoshi/foodgram/internal/repository"
	"github.com/hitoshi/foodgram/internal/security"
	"github.com/hitoshi/foodgram/internal/shoplist"
	"github.com/hitoshi/foodgram/internal/shortlink"
	"github.com/hitoshi/foodgram/internal/subscription"
	"github.com/hitoshi/foodgram/internal/user"
	"github.com/hitoshi/foodgram/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)
	var rest []string
	if len(args) > 0 {
		rest = args[1:]
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		migrateArgs, err := ParseMigrateArgs(rest)
		if err != nil {
			return err
		}
		return runMigrate(cfg, migrateArgs)
	case CommandLoadIngredients:
		path, err := ParseLoadIngredientsArgs(rest)
		if err != nil {
			return err
		}
		return runLoadIngredients(cfg, path)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newCatalogService は食材・タグの参照サービスを構築する。
// REDIS_URLが設定されている場合はRedisキャッシュを有効にする。
// Redisに接続できない場合はキャッシュなしで継続する。
// 戻り値のcloseはキャッシュ接続を閉じる。
func newCatalogService(cfg *config.Config, db *sql.DB, observer catalog.CacheObserver, log *slog.Logger) (*catalog.Service, func(), error) {
	ingredientRepo := repository.NewPostgresIngredientRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)

	opts := []catalog.Option{}
	if observer != nil {
		opts = append(opts, catalog.WithCacheObserver(observer))
	}
	closeFn := func() {}

	if cfg.RedisURL != "" {
		cache, err := catalog.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, catalog cache disabled", slog.String("error", err.Error()))
			cache.Close()
		} else {
			opts = append(opts, catalog.WithCache(cache, cfg.CatalogCacheTTL))
			closeFn = func() { cache.Close() }
			log.Info("catalog cache enabled", slog.Duration("ttl", cfg.CatalogCacheTTL))
		}
	}

	return catalog.NewService(ingredientRepo, tagRepo, log, opts...), closeFn, nil
}

// newRouterDeps はDB接続と設定から全依存関係をワイヤリングする。
func newRouterDeps(cfg *config.Config, db *sql.DB, collector *metrics.Collector, catalogService *catalog.Service, log *slog.Logger) (*handler.RouterDeps, error) {
	// リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	recipeRepo := repository.NewPostgresRecipeRepo(db)
	ingredientRepo := repository.NewPostgresIngredientRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	membershipRepo := repository.NewPostgresMembershipRepo(db)
	shoppingListRepo := repository.NewPostgresShoppingListRepo(db)
	subRepo := repository.NewPostgresSubscriptionRepo(db)

	// レシピ
	queryService := recipe.NewQueryService(recipeRepo, userRepo, subRepo)
	mutationService := recipe.NewMutationService(
		recipeRepo, ingredientRepo, tagRepo, queryService,
		security.NewTextSanitizer(),
		recipe.Limits{CookingTimeMax: cfg.CookingTimeMax, AmountMax: cfg.IngredientAmountMax},
		collector, log,
	)

	codec, err := shortlink.NewCodec(cfg.ShortLinkSalt, cfg.ShortLinkMinLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create short link codec: %w", err)
	}
	linkResolver := shortlink.NewResolver(codec, recipeRepo, cfg.BaseURL, log)

	// お気に入り・買い物リスト
	membershipService := membership.NewService(membershipRepo, recipeRepo, collector, log)
	shoppingListService := shoplist.NewService(shoppingListRepo, collector, log)

	// フォロー・ユーザー
	subService := subscription.NewService(subRepo, userRepo, recipeRepo, cfg.SubscriptionRecipesLimit, log)
	userService := user.NewService(userRepo, sessionRepo, subRepo)

	return &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: strings.HasPrefix(cfg.BaseURL, "https://"),
		},
		RateLimiter:    middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitWrite)),
		StatusRecorder: collector,
		Logger:         log,

		HealthChecker: db,
		Paginator: handler.Paginator{
			BaseURL:     cfg.BaseURL,
			DefaultSize: cfg.PageSize,
			MaxSize:     cfg.MaxPageSize,
		},

		RecipeQuery:    queryService,
		RecipeMutation: mutationService,
		ShortLinks:     linkResolver,
		ShoppingList:   shoppingListService,

		Favorites:    handler.NewMembershipServiceAdapter(membershipService, model.MembershipFavorite),
		ShoppingCart: handler.NewMembershipServiceAdapter(membershipService, model.MembershipCart),

		CatalogService:      catalogService,
		SubscriptionService: subService,
		UserService:         userService,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	log := slog.Default()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	catalogService, closeCache, err := newCatalogService(cfg, db, collector, log)
	if err != nil {
		return err
	}
	defer closeCache()

	deps, err := newRouterDeps(cfg, db, collector, catalogService, log)
	if err != nil {
		return err
	}
	defer deps.RateLimiter.Stop()

	router := handler.NewRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      metrics.SetupMetricsRoute(reg, router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションのクリーンアップを SESSION_CLEANUP_INTERVAL ごとに実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	collector := metrics.NewCollector(prometheus.NewRegistry())
	cleanupJob := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), slog.Default(), collector)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	// ctxがキャンセルされるまでブロックする
	cleanupJob.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// up はすべての未適用マイグレーションを適用し、down は指定ステップ分だけ戻す。
func runMigrate(cfg *config.Config, args MigrateArgs) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.String("direction", string(args.Direction)),
	)

	if args.Direction == MigrateDown {
		if err := database.RollbackMigrations(cfg.DatabaseURL, args.Steps); err != nil {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back", slog.Int("steps", args.Steps))
		return nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runLoadIngredients は食材ファイル（CSVまたはJSON）を読み込み一括登録する。
// 既存の (name, measurement_unit) はスキップする。
func runLoadIngredients(cfg *config.Config, path string) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log := slog.Default()
	catalogService, closeCache, err := newCatalogService(cfg, db, nil, log)
	if err != nil {
		return err
	}
	defer closeCache()

	total, inserted, err := catalogService.ImportFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}

	slog.Info("ingredients loaded",
		slog.String("file", path),
		slog.Int("read", total),
		slog.Int("inserted", inserted),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

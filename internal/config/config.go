package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Session
	SessionMaxAge int

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitWrite   int

	// Pagination
	PageSize    int
	MaxPageSize int

	// Subscription
	SubscriptionRecipesLimit int

	// Recipe validation
	CookingTimeMax      int
	IngredientAmountMax int

	// Short link
	ShortLinkSalt      string
	ShortLinkMinLength int

	// Cache
	RedisURL        string
	CatalogCacheTTL time.Duration

	// Worker
	SessionCleanupInterval time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// DefaultDotEnvPath は起動時に読み込む.envファイルのパス。
const DefaultDotEnvPath = ".env"

// Load は.envファイルと環境変数からConfigを読み込む。
// 既に設定されている環境変数は.envの値で上書きしない。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(getEnvString("DOTENV_PATH", DefaultDotEnvPath)); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.ShortLinkSalt = os.Getenv("SHORTLINK_SALT")
	if cfg.ShortLinkSalt == "" {
		missing = append(missing, "SHORTLINK_SALT")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", 30)
	cfg.PageSize = getEnvInt("PAGE_SIZE", 6)
	cfg.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", 100)
	cfg.SubscriptionRecipesLimit = getEnvInt("SUBSCRIPTION_RECIPES_LIMIT", 10)
	cfg.CookingTimeMax = getEnvInt("COOKING_TIME_MAX", 600)
	cfg.IngredientAmountMax = getEnvInt("INGREDIENT_AMOUNT_MAX", 10000)
	cfg.ShortLinkMinLength = getEnvInt("SHORTLINK_MIN_LENGTH", 6)
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive: %d", cfg.PageSize)
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return nil, fmt.Errorf("MAX_PAGE_SIZE (%d) must not be less than PAGE_SIZE (%d)", cfg.MaxPageSize, cfg.PageSize)
	}

	return cfg, nil
}

// loadDotEnv は.envファイルを読み込む。ファイルが存在しない場合は何もしない。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

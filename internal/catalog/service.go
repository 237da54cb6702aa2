// Package catalog は食材・タグの参照データの取得、キャッシュ、一括登録を提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// キャッシュキー
const (
	tagsCacheKey              = "foodgram:tags"
	ingredientPrefixKeyPrefix = "foodgram:ingredients:prefix:"
)

// キャッシュ参照結果のラベル
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Cache は参照データのキャッシュのインターフェース。
type Cache interface {
	// Get はkeyの値をdestにデコードする。存在しない場合はfalseを返す。
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set はvalueをttl付きで保存する。
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// DeletePrefix はprefixで始まる全てのキーを削除する。
	DeletePrefix(ctx context.Context, prefix string) error
}

// CacheObserver はキャッシュの参照結果を記録するインターフェース。
type CacheObserver interface {
	ObserveCatalogCache(result string)
}

// Service は食材・タグの参照サービス。
// キャッシュが設定されている場合はキャッシュを優先し、ミス時にDBから取得して保存する。
// キャッシュの障害は参照処理を失敗させない。
type Service struct {
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	cache       Cache
	ttl         time.Duration
	observer    CacheObserver
	logger      *slog.Logger
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithCache はキャッシュとTTLを設定する。
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithCacheObserver はキャッシュ参照結果の記録先を設定する。
func WithCacheObserver(observer CacheObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// NewService はServiceを生成する。
func NewService(
	ingredients repository.IngredientRepository,
	tags repository.TagRepository,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{ingredients: ingredients, tags: tags, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTags は全タグをID順で返す。
func (s *Service) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if s.cacheGet(ctx, tagsCacheKey, &tags) {
		return tags, nil
	}

	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	s.cacheSet(ctx, tagsCacheKey, tags)
	return tags, nil
}

// GetTag は指定IDのタグを返す。存在しない場合はNotFoundエラー。
func (s *Service) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	if tag == nil {
		return nil, model.NewTagNotFoundError(id)
	}
	return tag, nil
}

// SearchIngredients は名前の前方一致で食材を検索する。prefixが空の場合は全件。
func (s *Service) SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	prefix = strings.TrimSpace(prefix)
	key := ingredientPrefixKeyPrefix + strings.ToLower(prefix)

	var ingredients []model.Ingredient
	if s.cacheGet(ctx, key, &ingredients) {
		return ingredients, nil
	}

	ingredients, err := s.ingredients.SearchByNamePrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	s.cacheSet(ctx, key, ingredients)
	return ingredients, nil
}

// GetIngredient は指定IDの食材を返す。存在しない場合はNotFoundエラー。
func (s *Service) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find ingredient: %w", err)
	}
	if ing == nil {
		return nil, model.NewIngredientNotFoundError(id)
	}
	return ing, nil
}

// Import は食材を一括登録し、登録件数を返す。
// 登録後は食材検索のキャッシュを破棄する。
func (s *Service) Import(ctx context.Context, ingredients []model.Ingredient) (int, error) {
	inserted, err := s.ingredients.BulkInsert(ctx, ingredients)
	if err != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", err)
	}

	if s.cache != nil && inserted > 0 {
		if err := s.cache.DeletePrefix(ctx, ingredientPrefixKeyPrefix); err != nil {
			s.logger.Warn("failed to invalidate ingredient cache", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("ingredients imported",
		slog.Int("total", len(ingredients)),
		slog.Int("inserted", inserted),
	)
	return inserted, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		s.observe(CacheError)
		s.logger.Warn("catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	case found:
		s.observe(CacheHit)
		return true
	default:
		s.observe(CacheMiss)
		return false
	}
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveCatalogCache(result)
	}
}

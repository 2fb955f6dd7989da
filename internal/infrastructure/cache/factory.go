package cache

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AssetCacheFactory creates asset caches based on configuration
type AssetCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
	newRedis              func(RedisConfig) (AssetCache, error)
}

// AssetCacheFactoryOption is a functional option for configuring the factory
type AssetCacheFactoryOption func(*AssetCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) AssetCacheFactoryOption {
	return func(f *AssetCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) AssetCacheFactoryOption {
	return func(f *AssetCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithPingTimeout bounds the Redis connectivity check
func WithPingTimeout(d time.Duration) AssetCacheFactoryOption {
	return func(f *AssetCacheFactory) {
		f.pingTimeout = d
	}
}

// NewAssetCacheFactory creates a new factory
func NewAssetCacheFactory(cfg config.RedisConfig, opts ...AssetCacheFactoryOption) *AssetCacheFactory {
	f := &AssetCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           2 * time.Second,
		newRedis: func(c RedisConfig) (AssetCache, error) {
			return NewRedisAssetCache(c)
		},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *AssetCacheFactory) CreateRedisCache() (AssetCache, error) {
	c, err := f.newRedis(RedisConfig{
		Addr:        f.redisConfig.Addr(),
		Password:    f.redisConfig.Password,
		DB:          f.redisConfig.DB,
		PingTimeout: f.pingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis asset cache: %w", err)
	}
	return c, nil
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *AssetCacheFactory) CreateCache() (AssetCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis asset cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for asset cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory asset cache", zap.Error(err))
	return NewInMemoryAssetCache(), nil
}

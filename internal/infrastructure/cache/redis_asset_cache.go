package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "dms:asset:"

// RedisAssetCache implements AssetCache using Redis so that every instance
// shares fetched assets
type RedisAssetCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the connectivity check at construction
	PingTimeout time.Duration
}

// NewRedisAssetCache connects to Redis and verifies the connection
func NewRedisAssetCache(cfg RedisConfig) (*RedisAssetCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAssetCacheWithClient(client, ""), nil
}

// NewRedisAssetCacheWithClient wraps an existing client
func NewRedisAssetCacheWithClient(client *redis.Client, keyPrefix string) *RedisAssetCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisAssetCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get reads an asset. redis.Nil is reported as a miss.
func (c *RedisAssetCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached asset: %w", err)
	}
	return data, true, nil
}

// Set writes an asset with a TTL
func (c *RedisAssetCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache asset: %w", err)
	}
	return nil
}

// Delete removes an asset
func (c *RedisAssetCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached asset: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAssetCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisAssetCache) GetClient() *redis.Client {
	return c.client
}

var _ AssetCache = (*RedisAssetCache)(nil)

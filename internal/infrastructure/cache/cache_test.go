package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryAssetCache(t *testing.T) {
	c := NewInMemoryAssetCache()
	defer c.Close()
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		data, ok, err := c.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, data)
	})

	t.Run("returns stored bytes", func(t *testing.T) {
		logo := []byte{0x89, 'P', 'N', 'G'}
		require.NoError(t, c.Set(ctx, "logo", logo, time.Hour))

		logo[0] = 0 // caller mutation must not leak into the cache
		data, ok, err := c.Get(ctx, "logo")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)

		c.cleanup()
		_, exists := c.entries["short"]
		assert.False(t, exists)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "forever", []byte("x"), 0))
		c.cleanup()
		_, ok, _ := c.Get(ctx, "forever")
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", []byte("x"), time.Hour))
		require.NoError(t, c.Delete(ctx, "gone"))
		require.NoError(t, c.Delete(ctx, "gone"))
		_, ok, _ := c.Get(ctx, "gone")
		assert.False(t, ok)
	})
}

func TestInMemoryAssetCache_Concurrent(t *testing.T) {
	c := NewInMemoryAssetCache()
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = c.Set(ctx, key, []byte(key), time.Minute)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, c.Size())
}

func TestInMemoryAssetCache_CloseTwice(t *testing.T) {
	c := NewInMemoryAssetCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestAssetCacheFactory(t *testing.T) {
	redisCfg := config.RedisConfig{Host: "cache", Port: 6379, DB: 2}
	unavailable := func(RedisConfig) (AssetCache, error) { return nil, errors.New("dial tcp: connection refused") }

	t.Run("uses redis when reachable", func(t *testing.T) {
		want := NewInMemoryAssetCache()
		defer want.Close()

		f := NewAssetCacheFactory(redisCfg, WithPingTimeout(500*time.Millisecond))
		var got RedisConfig
		f.newRedis = func(c RedisConfig) (AssetCache, error) {
			got = c
			return want, nil
		}

		c, err := f.CreateCache()
		require.NoError(t, err)
		assert.Same(t, want, c)
		assert.Equal(t, "cache:6379", got.Addr)
		assert.Equal(t, 2, got.DB)
		assert.Equal(t, 500*time.Millisecond, got.PingTimeout)
	})

	t.Run("falls back to memory", func(t *testing.T) {
		f := NewAssetCacheFactory(redisCfg)
		f.newRedis = unavailable

		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryAssetCache{}, c)
	})

	t.Run("fails when fallback disabled", func(t *testing.T) {
		f := NewAssetCacheFactory(redisCfg, WithInMemoryFallback(false))
		f.newRedis = unavailable

		_, err := f.CreateCache()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestNewRedisAssetCache_Unreachable(t *testing.T) {
	_, err := NewRedisAssetCache(RedisConfig{Addr: "127.0.0.1:1", PingTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

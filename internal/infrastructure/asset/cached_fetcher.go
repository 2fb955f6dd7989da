package asset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// CachedFetcher serves assets from a cache and fills it on a miss. Cache
// failures are logged and the fetch goes to the source.
type CachedFetcher struct {
	next   printing.AssetFetcher
	cache  cache.AssetCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFetcher wraps next with c
func NewCachedFetcher(next printing.AssetFetcher, c cache.AssetCache, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{next: next, cache: c, ttl: ttl, logger: logger}
}

func cacheKey(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])
}

// Fetch returns the cached bytes for ref, fetching them on a miss
func (f *CachedFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key := cacheKey(ref)

	data, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.logger.Warn("asset cache read failed", zap.String("ref", ref), zap.Error(err))
	}
	if ok {
		return data, nil
	}

	data, err = f.next.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn("asset cache write failed", zap.String("ref", ref), zap.Error(err))
	}
	return data, nil
}

var _ printing.AssetFetcher = (*CachedFetcher)(nil)

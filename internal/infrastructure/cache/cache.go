// Package cache keeps fetched binary assets, such as the invoice logo, close
// to the renderer.
package cache

import (
	"context"
	"time"
)

// AssetCache stores raw bytes under a key with a TTL
type AssetCache interface {
	// Get returns the cached bytes. The bool is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data for ttl. A non-positive ttl keeps the entry until evicted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes an entry. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

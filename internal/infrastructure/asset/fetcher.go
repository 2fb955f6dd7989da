// Package asset resolves logo references to bytes. References are http(s)
// URLs, s3://bucket/key URIs or local file paths.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dms/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// maxAssetSize caps how much of a remote asset is read
const maxAssetSize = 10 << 20

// ObjectReader reads objects for s3:// references
type ObjectReader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	// Timeout bounds each http(s) request. Zero leaves only ctx in charge.
	Timeout time.Duration
	// Objects serves s3:// references. Nil rejects them.
	Objects ObjectReader
	Client  *http.Client
	Logger  *zap.Logger
}

// Fetcher loads assets by scheme
type Fetcher struct {
	client  *http.Client
	objects ObjectReader
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  client,
		objects: cfg.Objects,
		logger:  logger,
	}
}

// Fetch returns the bytes behind ref
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("asset reference is empty")
	}

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		return f.fetchObject(ctx, ref)
	default:
		return f.fetchFile(ctx, strings.TrimPrefix(ref, "file://"))
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid asset URL %q: %w", ref, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", ref, maxAssetSize)
	}

	f.logger.Debug("asset fetched",
		zap.String("url", ref),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)))
	return data, nil
}

// ParseObjectRef splits s3://bucket/key
func ParseObjectRef(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid object reference %q: %w", ref, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid object reference %q: want s3://bucket/key", ref)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid object reference %q: missing key", ref)
	}
	return u.Host, key, nil
}

func (f *Fetcher) fetchObject(ctx context.Context, ref string) ([]byte, error) {
	if f.objects == nil {
		return nil, fmt.Errorf("cannot fetch %s: object storage is not configured", ref)
	}
	bucket, key, err := ParseObjectRef(ref)
	if err != nil {
		return nil, err
	}
	return f.objects.Download(ctx, bucket, key)
}

func (f *Fetcher) fetchFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset file: %w", err)
	}
	return data, nil
}

var _ printing.AssetFetcher = (*Fetcher)(nil)

package storage

import (
	"context"
	"fmt"

	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// NewPDFStorage builds the PDF store selected by storage.type. For S3 the
// bucket is created when missing.
func NewPDFStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (printing.PDFStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Type {
	case config.StorageTypeS3:
		s, err := NewS3Storage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageTypeLocal, "":
		return printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath: cfg.LocalPath,
			BaseURL:  cfg.BaseURL,
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// Command invoicepdf renders invoice JSON to a PDF file with the same
// configuration and renderer as the HTTP service.
//
//	invoicepdf -in invoice.json -out invoice.pdf
//	invoicepdf -in route-7.json -extras extras.json -out route-7.pdf
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dms/backend/internal/domain/invoice"
	"github.com/dms/backend/internal/infrastructure/asset"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/printing"
	"github.com/dms/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		inPath     string
		extrasPath string
		outPath    string
		configPath string
		logLevel   string
	)

	flag.StringVar(&inPath, "in", "", "Invoice JSON file: one invoice object or an array of invoices")
	flag.StringVar(&extrasPath, "extras", "", "Optional JSON map of invoice key to extra details")
	flag.StringVar(&outPath, "out", "", "Output PDF path (defaults to the generated file name)")
	flag.StringVar(&configPath, "config", "", "Path to a config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: invoicepdf -in <invoice.json> [-extras <extras.json>] [-out <file.pdf>] [-config <config.toml>]")
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	invoices, err := readInvoices(inPath)
	if err != nil {
		log.Fatal("Failed to read invoices", zap.String("path", inPath), zap.Error(err))
	}
	var extras invoice.ExtraDetailsIndex
	if extrasPath != "" {
		if err := readJSON(extrasPath, &extras); err != nil {
			log.Fatal("Failed to read extra details", zap.String("path", extrasPath), zap.Error(err))
		}
	}
	for i := range invoices {
		if err := invoices[i].Validate(); err != nil {
			log.Fatal("Invalid invoice", zap.Int("index", i), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, err := newRenderer(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice renderer", zap.Error(err))
	}

	var result *printing.RenderResult
	if len(invoices) == 1 {
		result, err = renderer.Render(ctx, &invoices[0], extras.For(&invoices[0]))
	} else {
		name := ""
		if outPath != "" {
			name = filepath.Base(outPath)
		}
		result, err = renderer.RenderBatch(ctx, invoices, extras, name)
	}
	if err != nil {
		log.Fatal("Render failed", zap.Error(err))
	}

	if outPath == "" {
		outPath = result.FileName
	}
	if err := os.WriteFile(outPath, result.PDFData, 0o644); err != nil {
		log.Fatal("Failed to write PDF", zap.String("path", outPath), zap.Error(err))
	}

	log.Info("Invoice PDF written",
		zap.String("path", outPath),
		zap.Int("invoices", len(invoices)),
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration),
	)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// readInvoices accepts either a single invoice object or an array
func readInvoices(path string) ([]invoice.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var invoices []invoice.Invoice
		if err := json.Unmarshal(data, &invoices); err != nil {
			return nil, fmt.Errorf("decode invoice array: %w", err)
		}
		if len(invoices) == 0 {
			return nil, fmt.Errorf("no invoices in %s", path)
		}
		return invoices, nil
	}

	var inv invoice.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return []invoice.Invoice{inv}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// newRenderer wires the renderer without Redis or metrics. s3:// logos need
// the S3 storage settings.
func newRenderer(cfg *config.Config, log *zap.Logger) (*printing.InvoiceRenderer, error) {
	fetcherCfg := asset.FetcherConfig{
		Timeout: cfg.Invoice.AssetTimeout,
		Logger:  log,
	}
	if cfg.Storage.Type == config.StorageTypeS3 {
		s3, err := storage.NewS3Storage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		fetcherCfg.Objects = s3
	}
	fetcher := asset.NewCachedFetcher(asset.NewFetcher(fetcherCfg), cache.NewInMemoryAssetCache(), cfg.Invoice.AssetCacheTTL, log)

	rendererCfg := printing.RendererConfigFrom(cfg.Invoice, log)
	rendererCfg.Assets = fetcher
	return printing.NewInvoiceRenderer(rendererCfg)
}

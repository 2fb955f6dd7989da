package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	printingapp "github.com/dms/backend/internal/application/printing"
	"github.com/dms/backend/internal/infrastructure/asset"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/migration"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/dms/backend/internal/infrastructure/printing"
	"github.com/dms/backend/internal/infrastructure/scheduler"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (defaults to ./config.toml when present)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting DMS invoice service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Type),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.BridgeLogger(log, logsProvider, cfg.Telemetry.LogsLevel)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	profilerCfg := telemetry.DefaultProfilerConfig()
	profilerCfg.Enabled = cfg.Telemetry.ProfilingEnabled
	profilerCfg.ServerAddress = cfg.Telemetry.ProfilerAddress
	profilerCfg.ApplicationName = cfg.Telemetry.ServiceName
	profilerCfg.BasicAuthUser = cfg.Telemetry.ProfilerAuthUser
	profilerCfg.BasicAuthPassword = cfg.Telemetry.ProfilerAuthPassword
	profiler, err := telemetry.NewProfiler(profilerCfg, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := migrate(db, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Document storage and assets
	pdfStorage, err := storage.NewPDFStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	assetCache, err := cache.NewAssetCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize asset cache", zap.Error(err))
	}
	defer func() {
		_ = assetCache.Close()
	}()

	renderer, err := newRenderer(cfg, pdfStorage, assetCache, meter, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice renderer", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := newEngine(cfg, meter, log)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	printService := printingapp.NewInvoicePrintService(
		renderer,
		persistence.NewGormPrintJobRepository(db.DB),
		pdfStorage,
		printingapp.ServiceConfig{
			MaxBatchSize:     cfg.Invoice.MaxBatchSize,
			Retention:        cfg.Storage.Retention,
			DownloadBasePath: r.BasePath() + "/print/jobs",
		},
		log,
	)

	// Retention cleanup
	retention := scheduler.NewRetentionScheduler(printService, log, scheduler.RetentionSchedulerConfig{
		Enabled:    cfg.Storage.Retention > 0,
		Interval:   cfg.Storage.CleanupInterval,
		Timeout:    5 * time.Minute,
		RunOnStart: true,
	})
	if err := retention.Start(ctx); err != nil {
		log.Fatal("Failed to start retention scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := retention.Stop(stopCtx); err != nil {
			log.Error("Error stopping retention scheduler", zap.Error(err))
		}
	}()

	printHandler := handler.NewInvoicePrintHandler(printService)
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if rc, ok := assetCache.(*cache.RedisAssetCache); ok {
		checks["redis"] = func(ctx context.Context) error {
			return rc.GetClient().Ping(ctx).Err()
		}
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks)

	r.RegisterRoot(handler.HealthRoutes(systemHandler))
	r.Register(handler.SystemRoutes(systemHandler))
	r.Register(handler.InvoiceRoutes(printHandler))
	r.Register(handler.PrintJobRoutes(printHandler))
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered", zap.String("route", route))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	return m.Up()
}

// newRenderer builds the invoice renderer with the cached logo fetcher and
// render metrics. s3:// logos are read through the document store when it is S3.
func newRenderer(cfg *config.Config, pdfStorage printing.PDFStorage, assetCache cache.AssetCache, meter metric.Meter, log *zap.Logger) (*printing.InvoiceRenderer, error) {
	fetcherCfg := asset.FetcherConfig{
		Timeout: cfg.Invoice.AssetTimeout,
		Logger:  log,
	}
	if objects, ok := pdfStorage.(asset.ObjectReader); ok {
		fetcherCfg.Objects = objects
	}
	fetcher := asset.NewCachedFetcher(asset.NewFetcher(fetcherCfg), assetCache, cfg.Invoice.AssetCacheTTL, log)

	renderMetrics, err := telemetry.NewRenderMetrics(meter)
	if err != nil {
		return nil, err
	}

	rendererCfg := printing.RendererConfigFrom(cfg.Invoice, log)
	rendererCfg.Assets = fetcher
	rendererCfg.Observer = renderMetrics
	return printing.NewInvoiceRenderer(rendererCfg)
}

// newEngine creates the gin engine. Middleware order matters: the span must
// exist before the logger and tenant middleware read its IDs, and the
// enricher needs all three identities in place.
func newEngine(cfg *config.Config, meter metric.Meter, log *zap.Logger) *gin.Engine {
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	skipPaths := []string{"/health"}
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		DefaultTenantID: middleware.DevTenantID,
		SkipPaths:       skipPaths,
		Logger:          log,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: skipPaths,
	}))
	engine.Use(middleware.HTTPMetrics(meter, log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{"Content-Disposition", "X-Page-Count", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	return engine
}

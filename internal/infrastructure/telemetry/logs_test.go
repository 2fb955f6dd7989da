package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "dms-invoice",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, nil)
	require.NoError(t, err)

	for _, p := range []*LoggerProvider{nil, lp} {
		core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "dms-invoice", LoggerProvider: p})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	}
}

func TestBridgeLogger_DisabledReturnsBase(t *testing.T) {
	base := zaptest.NewLogger(t)
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, base)
	require.NoError(t, err)

	assert.Same(t, base, BridgeLogger(base, lp, "info"))
	assert.Same(t, base, BridgeLogger(base, nil, "info"))
}

// The gRPC exporter connects lazily, so an unused endpoint still builds a provider.
func TestBridgeLogger_Enabled(t *testing.T) {
	previous := global.GetLoggerProvider()
	t.Cleanup(func() { global.SetLoggerProvider(previous) })

	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:1",
		ServiceName:       "dms-invoice",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_ = lp.Shutdown(shutdownCtx)
	}()

	baseCore, observed := observer.New(zapcore.DebugLevel)
	bridged := BridgeLogger(zap.New(baseCore), lp, "warn")
	require.NotNil(t, bridged)

	bridged.Info("job rendered", zap.String("job_id", "j-1"))
	bridged.Warn("pdf upload retried")

	// the base core keeps its own level; only export is filtered
	assert.Equal(t, 2, observed.Len())
	assert.True(t, bridged.Core().Enabled(zapcore.DebugLevel))
}

func TestLevelFilterCore(t *testing.T) {
	inner, observed := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	logger := zap.New(core)
	logger.Info("dropped")
	logger.Error("kept")

	require.Equal(t, 1, observed.Len())
	assert.Equal(t, "kept", observed.All()[0].Message)
}

func TestLevelFilterCore_With(t *testing.T) {
	inner, observed := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	withFields := core.With([]zapcore.Field{zap.String("tenant_id", "t-1")})
	filtered, ok := withFields.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, filtered.minLevel)

	zap.New(withFields).Warn("render slow")
	require.Equal(t, 1, observed.Len())
	assert.Equal(t, "t-1", observed.All()[0].ContextMap()["tenant_id"])
}

func TestNewBridgedLogger(t *testing.T) {
	first, firstLogs := observer.New(zapcore.InfoLevel)
	second, secondLogs := observer.New(zapcore.ErrorLevel)

	logger := NewBridgedLogger(first, second)
	logger.Info("info")
	logger.Error("error")

	assert.Equal(t, 2, firstLogs.Len())
	assert.Equal(t, 1, secondLogs.Len())
}

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMeter returns a meter backed by a manual reader
func newTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:1",
		ServiceName:       "dms-invoice",
		Insecure:          true,
	}, nil)
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = mp.Shutdown(ctx)
}

func TestCounterAndHistogram(t *testing.T) {
	provider, reader := newTestMeter(t)
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := NewCounter(meter, "jobs_total", "jobs", "{job}")
	require.NoError(t, err)
	counter.Inc(ctx, attribute.String("kind", "SINGLE"))
	counter.Inc(ctx, attribute.String("kind", "SINGLE"))

	hist, err := NewHistogram(meter, HistogramOpts{Name: "latency", Unit: "s", Boundaries: []float64{0.1, 1}})
	require.NoError(t, err)
	hist.RecordDuration(ctx, 250*time.Millisecond)
	hist.Record(ctx, 2)

	metrics := collect(t, reader)

	sum, ok := metrics["jobs_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	h, ok := metrics["latency"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(2), h.DataPoints[0].Count)
	assert.Equal(t, []float64{0.1, 1}, h.DataPoints[0].Bounds)
	assert.Equal(t, []uint64{0, 1, 1}, h.DataPoints[0].BucketCounts)
}

func TestBuckets(t *testing.T) {
	for _, buckets := range [][]float64{RenderDurationBuckets, PageCountBuckets} {
		for i := 1; i < len(buckets); i++ {
			assert.Greater(t, buckets[i], buckets[i-1])
		}
	}
}

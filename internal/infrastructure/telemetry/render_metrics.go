package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/dms/backend/internal/infrastructure/printing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the service's own metrics
const MeterName = "github.com/dms/backend/invoice"

// Attribute keys used on render metrics
var (
	AttrRenderKind   = attribute.Key("render.kind")
	AttrRenderResult = attribute.Key("render.result")
	AttrErrorCode    = attribute.Key("error.code")
)

// RenderMetrics records invoice render outcomes. It satisfies printing.RenderObserver.
type RenderMetrics struct {
	renders  *Counter
	duration *Histogram
	pages    *Histogram
}

var _ printing.RenderObserver = (*RenderMetrics)(nil)

// NewRenderMetrics creates the render instruments on meter
func NewRenderMetrics(meter metric.Meter) (*RenderMetrics, error) {
	renders, err := NewCounter(meter, "invoice_renders_total", "Invoice documents rendered, by kind and result", "{render}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_render_duration_seconds",
		Description: "Time spent laying out and serializing an invoice document",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	pages, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_render_pages",
		Description: "Pages in successfully rendered documents",
		Unit:        "{page}",
		Boundaries:  PageCountBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &RenderMetrics{renders: renders, duration: duration, pages: pages}, nil
}

// ObserveRender records one finished render
func (m *RenderMetrics) ObserveRender(ctx context.Context, kind string, pages int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrRenderKind.String(kind)}
	if err != nil {
		attrs = append(attrs, AttrRenderResult.String("failure"), AttrErrorCode.String(errorCode(err)))
	} else {
		attrs = append(attrs, AttrRenderResult.String("success"))
	}

	m.renders.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, duration, attrs...)
	if err == nil {
		m.pages.Record(ctx, float64(pages), AttrRenderKind.String(kind))
	}
}

func errorCode(err error) string {
	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) && renderErr.Code != "" {
		return renderErr.Code
	}
	return printing.ErrCodeRenderFailed
}

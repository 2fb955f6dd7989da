package printing

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
	"go.uber.org/zap"
)

// AssetFetcher loads binary assets such as the company logo
type AssetFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// RenderObserver is notified about finished renders
type RenderObserver interface {
	ObserveRender(ctx context.Context, kind string, pages int, duration time.Duration, err error)
}

// InvoiceRendererConfig contains configuration for the invoice renderer
type InvoiceRendererConfig struct {
	Company CompanyProfile
	Format  FormatConfig
	// LogoRef is an http(s) URL, an s3:// URI or a file path. Empty means no logo.
	LogoRef string
	// LogoOptional renders without the logo when it cannot be fetched
	LogoOptional bool
	Fonts        FontConfig
	Compress     bool
	CreationDate time.Time
	Assets       AssetFetcher
	Observer     RenderObserver
	Logger       *zap.Logger
}

// InvoiceRenderer lays out invoices with gofpdf
type InvoiceRenderer struct {
	config    *InvoiceRendererConfig
	formatter *Formatter
	geom      PageGeometry
	logger    *zap.Logger
	newCanvas func(opts DocumentOptions) (Canvas, error)
}

// NewInvoiceRenderer creates a new invoice renderer
func NewInvoiceRenderer(config *InvoiceRendererConfig) (*InvoiceRenderer, error) {
	if config == nil {
		config = &InvoiceRendererConfig{}
	}
	if config.LogoRef != "" && config.Assets == nil {
		return nil, NewRenderError(ErrCodeAssetFetchFailed, "a logo is configured but no asset fetcher is set", nil)
	}
	if config.CreationDate.IsZero() {
		config.CreationDate = DefaultCreationDate
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer := &InvoiceRenderer{
		config:    config,
		formatter: NewFormatter(config.Format),
		geom:      A4(),
		logger:    logger,
	}
	renderer.newCanvas = func(opts DocumentOptions) (Canvas, error) {
		return NewGofpdfCanvas(opts)
	}
	return renderer, nil
}

// FileNameFor returns the download name of a single invoice document
func FileNameFor(inv *invoice.Invoice) string {
	number := strings.TrimSpace(inv.InvoiceNumber)
	if number == "" {
		number = inv.Key()
	}
	return "invoice-" + sanitizeFileName(number) + ".pdf"
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFileName(s string) string {
	s = strings.Trim(unsafeFileChars.ReplaceAllString(s, "-"), "-.")
	if s == "" {
		return "document"
	}
	return s
}

// Render lays out a single invoice
func (r *InvoiceRenderer) Render(ctx context.Context, inv *invoice.Invoice, extra *invoice.ExtraDetails) (*RenderResult, error) {
	start := time.Now()
	result, err := r.render(ctx, inv, extra)
	r.observe(ctx, "single", result, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	result.RenderDuration = time.Since(start)
	return result, nil
}

func (r *InvoiceRenderer) render(ctx context.Context, inv *invoice.Invoice, extra *invoice.ExtraDetails) (*RenderResult, error) {
	if err := validateInvoice(inv); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	logo, err := r.loadLogo(ctx)
	if err != nil {
		return nil, err
	}

	canvas, err := r.openCanvas("Invoice " + inv.InvoiceNumber)
	if err != nil {
		return nil, err
	}

	pages, err := r.layout(ctx, canvas, inv, extra, logo)
	if err != nil {
		return nil, err
	}

	buf, err := serialize(canvas)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("invoice rendered",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("pages", pages),
		zap.Int("bytes", buf.Len()))

	return &RenderResult{
		PDFData:   buf.Bytes(),
		PageCount: pages,
		FileName:  FileNameFor(inv),
	}, nil
}

func validateInvoice(inv *invoice.Invoice) error {
	if inv == nil {
		return NewRenderError(ErrCodeInvalidInvoice, "invoice is nil", nil)
	}
	if err := inv.Validate(); err != nil {
		return NewRenderError(ErrCodeInvalidInvoice, "invoice cannot be rendered", err)
	}
	return nil
}

func (r *InvoiceRenderer) openCanvas(title string) (Canvas, error) {
	return r.newCanvas(DocumentOptions{
		Fonts:        r.config.Fonts,
		Compress:     r.config.Compress,
		CreationDate: r.config.CreationDate,
		Title:        title,
		Author:       r.config.Company.Name,
	})
}

func serialize(canvas Canvas) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to serialize PDF", err)
	}
	return &buf, nil
}

// layout runs the section renderers in order and finishes with the footer
// pass. The invoice starts on a new page after whatever canvas already
// holds. It returns the number of pages drawn for this invoice.
func (r *InvoiceRenderer) layout(ctx context.Context, canvas Canvas, inv *invoice.Invoice, extra *invoice.ExtraDetails, logo []byte) (int, error) {
	cur := NewCursor(canvas, r.geom)
	fields := ResolveFields(inv, extra, r.formatter)

	steps := []func() error{
		func() error { return renderHeader(canvas, cur, r.config.Company, logo) },
		func() error { return renderInfo(canvas, cur, fields) },
		func() error { return newLineItemTable(canvas, cur, r.formatter).render(inv) },
		func() error { return renderSummary(canvas, cur, r.formatter, inv.Summarize()) },
		func() error { return renderAcknowledgement(canvas, cur) },
	}
	for _, step := range steps {
		if err := checkContext(ctx); err != nil {
			return 0, err
		}
		if err := step(); err != nil {
			return 0, asRenderError(err)
		}
		if err := canvas.Err(); err != nil {
			return 0, NewRenderError(ErrCodeRenderFailed, "drawing failed", err)
		}
	}

	pages, err := cur.Close()
	if err != nil {
		return 0, asRenderError(err)
	}
	renderFooters(canvas, r.geom, r.config.Company, cur.FirstPage(), pages)
	if err := canvas.Err(); err != nil {
		return 0, NewRenderError(ErrCodeRenderFailed, "drawing footers failed", err)
	}
	return pages, nil
}

func (r *InvoiceRenderer) loadLogo(ctx context.Context) ([]byte, error) {
	if strings.TrimSpace(r.config.LogoRef) == "" {
		return nil, nil
	}
	logo, err := r.config.Assets.Fetch(ctx, r.config.LogoRef)
	if err != nil {
		if r.config.LogoOptional {
			r.logger.Warn("rendering without logo", zap.String("logo", r.config.LogoRef), zap.Error(err))
			return nil, nil
		}
		return nil, NewRenderError(ErrCodeAssetFetchFailed, "failed to fetch logo "+r.config.LogoRef, err)
	}
	return logo, nil
}

func (r *InvoiceRenderer) observe(ctx context.Context, kind string, result *RenderResult, d time.Duration, err error) {
	if r.config.Observer == nil {
		return
	}
	pages := 0
	if result != nil {
		pages = result.PageCount
	}
	r.config.Observer.ObserveRender(ctx, kind, pages, d, err)
}

func asRenderError(err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return NewRenderError(ErrCodeRenderFailed, "layout failed", err)
}

func renderErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeRenderFailed
}

var _ DocumentRenderer = (*InvoiceRenderer)(nil)

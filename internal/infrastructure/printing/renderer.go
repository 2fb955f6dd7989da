package printing

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
)

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
	// FileName is the suggested download name
	FileName string
}

// DocumentRenderer produces invoice PDFs
type DocumentRenderer interface {
	// Render lays out a single invoice
	Render(ctx context.Context, inv *invoice.Invoice, extra *invoice.ExtraDetails) (*RenderResult, error)
	// RenderBatch lays out each invoice on its own pages, one after another
	// in input order, into a single document
	RenderBatch(ctx context.Context, invoices []invoice.Invoice, extras invoice.ExtraDetailsIndex, fileName string) (*RenderResult, error)
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidInvoice   = "INVALID_INVOICE"
	ErrCodeAssetFetchFailed = "ASSET_FETCH_FAILED"
	ErrCodeFontFailed       = "FONT_FAILED"
	ErrCodeCancelled        = "RENDER_CANCELLED"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return NewRenderError(ErrCodeCancelled, "rendering cancelled", ctx.Err())
	default:
		return nil
	}
}

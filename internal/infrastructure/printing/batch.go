package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
	"go.uber.org/zap"
)

const defaultBatchFileName = "invoices.pdf"

// RenderBatch lays out the invoices one after another on a single canvas.
// Every invoice starts on a new page and numbers its footers on its own, so
// the document holds the pages of the first invoice, then the second, and so
// on. The first failing invoice aborts the batch.
func (r *InvoiceRenderer) RenderBatch(ctx context.Context, invoices []invoice.Invoice, extras invoice.ExtraDetailsIndex, fileName string) (*RenderResult, error) {
	start := time.Now()
	result, err := r.renderBatch(ctx, invoices, extras, fileName)
	r.observe(ctx, "batch", result, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	result.RenderDuration = time.Since(start)
	return result, nil
}

func (r *InvoiceRenderer) renderBatch(ctx context.Context, invoices []invoice.Invoice, extras invoice.ExtraDetailsIndex, fileName string) (*RenderResult, error) {
	if len(invoices) == 0 {
		return nil, NewRenderError(ErrCodeInvalidInvoice, "batch contains no invoices", nil)
	}
	for i := range invoices {
		if err := validateInvoice(&invoices[i]); err != nil {
			return nil, batchError(i, &invoices[i], err)
		}
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	logo, err := r.loadLogo(ctx)
	if err != nil {
		return nil, err
	}

	canvas, err := r.openCanvas("Invoices")
	if err != nil {
		return nil, err
	}

	for i := range invoices {
		inv := &invoices[i]
		if _, err := r.layout(ctx, canvas, inv, extras.For(inv), logo); err != nil {
			return nil, batchError(i, inv, err)
		}
	}

	buf, err := serialize(canvas)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(fileName)
	if name == "" {
		name = defaultBatchFileName
	}
	pages := canvas.PageCount()

	r.logger.Debug("invoice batch rendered",
		zap.Int("invoices", len(invoices)),
		zap.Int("pages", pages),
		zap.Int("bytes", buf.Len()))

	return &RenderResult{
		PDFData:   buf.Bytes(),
		PageCount: pages,
		FileName:  name,
	}, nil
}

func batchError(i int, inv *invoice.Invoice, err error) error {
	return NewRenderError(renderErrorCode(err), fmt.Sprintf("invoice %d (%s) failed", i+1, inv.Key()), err)
}

package printing

import (
	"io"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
	domain "github.com/dms/backend/internal/domain/printing"
)

// =============================================================================
// Render DTOs
// =============================================================================

// RenderInvoiceRequest asks for one invoice document
type RenderInvoiceRequest struct {
	Invoice      invoice.Invoice       `json:"invoice"`
	ExtraDetails *invoice.ExtraDetails `json:"extraDetails"`
	// Store keeps the PDF in document storage and records a print job
	Store bool `json:"store"`
}

// RenderBatchRequest asks for several invoices concatenated into one document,
// in the order given
type RenderBatchRequest struct {
	Invoices     []invoice.Invoice         `json:"invoices" binding:"required,min=1,dive"`
	ExtraDetails invoice.ExtraDetailsIndex `json:"extraDetails"`
	FileName     string                    `json:"fileName" binding:"omitempty,max=200"`
	Store        bool                      `json:"store"`
}

// Document is a rendered PDF held in memory
type Document struct {
	FileName  string
	PageCount int
	Data      []byte
}

// RenderOutput is the result of a render call. Document is set when the PDF
// was not stored; Job is set when it was.
type RenderOutput struct {
	Document *Document
	Job      *PrintJobResponse
}

// =============================================================================
// Print Job DTOs
// =============================================================================

// ListJobsRequest represents a request to list print jobs. Status and Kind
// are matched case-insensitively.
type ListJobsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Status   string `form:"status"`
	Kind     string `form:"kind"`
}

// PrintJobResponse represents a print job response
type PrintJobResponse struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenant_id"`
	Kind              string     `json:"kind"`
	InvoiceNumbers    []string   `json:"invoice_numbers"`
	FileName          string     `json:"file_name"`
	Status            string     `json:"status"`
	PageCount         int        `json:"page_count"`
	FileSize          int64      `json:"file_size"`
	DownloadURL       string     `json:"download_url,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	RenderStartedAt   *time.Time `json:"render_started_at,omitempty"`
	RenderCompletedAt *time.Time `json:"render_completed_at,omitempty"`
	CreatedBy         string     `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ListJobsResponse represents a paginated list of print jobs
type ListJobsResponse struct {
	Items    []PrintJobResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// JobDocument is an open handle on a stored PDF. The caller closes Content.
type JobDocument struct {
	FileName string
	Size     int64
	Content  io.ReadCloser
}

func toJobResponse(j *domain.PrintJob, downloadURL string) *PrintJobResponse {
	resp := &PrintJobResponse{
		ID:                j.ID.String(),
		TenantID:          j.TenantID.String(),
		Kind:              j.Kind.String(),
		InvoiceNumbers:    j.InvoiceNumbers,
		FileName:          j.FileName,
		Status:            j.Status.String(),
		PageCount:         j.PageCount,
		FileSize:          j.FileSize,
		ErrorMessage:      j.ErrorMessage,
		RenderStartedAt:   j.RenderStartedAt,
		RenderCompletedAt: j.RenderCompletedAt,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
	if j.HasPDF() {
		resp.DownloadURL = downloadURL
	}
	if j.CreatedBy != nil {
		resp.CreatedBy = j.CreatedBy.String()
	}
	return resp
}

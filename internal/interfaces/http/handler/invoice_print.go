package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	printingapp "github.com/dms/backend/internal/application/printing"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contentTypePDF = "application/pdf"

// InvoicePrinter is the application surface the print endpoints use
type InvoicePrinter interface {
	RenderInvoice(ctx context.Context, tenantID, userID uuid.UUID, req printingapp.RenderInvoiceRequest) (*printingapp.RenderOutput, error)
	RenderBatch(ctx context.Context, tenantID, userID uuid.UUID, req printingapp.RenderBatchRequest) (*printingapp.RenderOutput, error)
	GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*printingapp.PrintJobResponse, error)
	ListJobs(ctx context.Context, tenantID uuid.UUID, req printingapp.ListJobsRequest) (*printingapp.ListJobsResponse, error)
	OpenJobPDF(ctx context.Context, tenantID, jobID uuid.UUID) (*printingapp.JobDocument, error)
}

// InvoicePrintHandler serves invoice PDFs and the print jobs behind stored ones
type InvoicePrintHandler struct {
	BaseHandler
	printer InvoicePrinter
}

// NewInvoicePrintHandler creates a new InvoicePrintHandler
func NewInvoicePrintHandler(printer InvoicePrinter) *InvoicePrintHandler {
	return &InvoicePrintHandler{printer: printer}
}

// RenderInvoice renders one invoice.
// POST /invoices/pdf
//
// Without store the PDF is the response body. With store the document is
// kept and the 201 body is the completed print job.
func (h *InvoicePrintHandler) RenderInvoice(c *gin.Context) {
	var req printingapp.RenderInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	out, err := h.printer.RenderInvoice(c.Request.Context(), getTenantID(c), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondRender(c, out)
}

// RenderBatch renders several invoices into one document in request order.
// POST /invoices/pdf/batch
func (h *InvoicePrintHandler) RenderBatch(c *gin.Context) {
	var req printingapp.RenderBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	out, err := h.printer.RenderBatch(c.Request.Context(), getTenantID(c), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondRender(c, out)
}

func (h *InvoicePrintHandler) respondRender(c *gin.Context, out *printingapp.RenderOutput) {
	if out.Job != nil {
		h.Created(c, out.Job)
		return
	}
	doc := out.Document
	c.Header("Content-Disposition", attachment(doc.FileName))
	c.Header("X-Page-Count", strconv.Itoa(doc.PageCount))
	c.Data(http.StatusOK, contentTypePDF, doc.Data)
}

// ListJobs lists the tenant's print jobs.
// GET /print/jobs?page=1&page_size=20&status=completed&kind=batch
func (h *InvoicePrintHandler) ListJobs(c *gin.Context) {
	var req printingapp.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.printer.ListJobs(c.Request.Context(), getTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetJob returns one print job.
// GET /print/jobs/:id
func (h *InvoicePrintHandler) GetJob(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.printer.GetJob(c.Request.Context(), getTenantID(c), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// DownloadJob streams the stored PDF of a completed job.
// GET /print/jobs/:id/download
func (h *InvoicePrintHandler) DownloadJob(c *gin.Context) {
	jobID, ok := h.jobID(c)
	if !ok {
		return
	}

	doc, err := h.printer.OpenJobPDF(c.Request.Context(), getTenantID(c), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer doc.Content.Close()

	size := doc.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentTypePDF, doc.Content, map[string]string{
		"Content-Disposition": attachment(doc.FileName),
	})
}

func (h *InvoicePrintHandler) jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID format")
		return uuid.Nil, false
	}
	return id, true
}

var headerUnsafe = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "")

// attachment builds a Content-Disposition that downloads as fileName
func attachment(fileName string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, headerUnsafe.Replace(fileName))
}

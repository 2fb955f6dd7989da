package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/invoice"
	domain "github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const spanService = "invoice_print"

const (
	defaultMaxBatchSize     = 200
	defaultDownloadBasePath = "/api/v1/print/jobs"
)

// ServiceConfig tunes the invoice print service
type ServiceConfig struct {
	// MaxBatchSize caps the invoices in one batch document
	MaxBatchSize int
	// Retention is how long jobs and their PDFs are kept. Zero disables cleanup.
	Retention time.Duration
	// DownloadBasePath prefixes job download links
	DownloadBasePath string
}

// InvoicePrintService renders invoice documents and, when asked to, keeps
// them in document storage behind a print job
type InvoicePrintService struct {
	renderer   infra.DocumentRenderer
	jobRepo    domain.PrintJobRepository
	pdfStorage infra.PDFStorage
	config     ServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewInvoicePrintService creates a new InvoicePrintService. jobRepo and
// pdfStorage may be nil, in which case only unstored renders are available.
func NewInvoicePrintService(
	renderer infra.DocumentRenderer,
	jobRepo domain.PrintJobRepository,
	pdfStorage infra.PDFStorage,
	config ServiceConfig,
	logger *zap.Logger,
) *InvoicePrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = defaultMaxBatchSize
	}
	if config.DownloadBasePath == "" {
		config.DownloadBasePath = defaultDownloadBasePath
	}
	return &InvoicePrintService{
		renderer:   renderer,
		jobRepo:    jobRepo,
		pdfStorage: pdfStorage,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// StorageEnabled reports whether rendered documents can be stored
func (s *InvoicePrintService) StorageEnabled() bool {
	return s.jobRepo != nil && s.pdfStorage != nil
}

// =============================================================================
// Render Operations
// =============================================================================

// RenderInvoice lays out one invoice. With Store set the PDF is persisted and
// the completed job is returned; otherwise the document itself is.
func (s *InvoicePrintService) RenderInvoice(ctx context.Context, tenantID, userID uuid.UUID, req RenderInvoiceRequest) (*RenderOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "render_invoice",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceNo, req.Invoice.InvoiceNumber,
	)
	defer span.End()

	if err := req.Invoice.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Store && !s.StorageEnabled() {
		return nil, errStorageDisabled
	}

	inv := req.Invoice
	render := profiled("render_invoice", func(ctx context.Context) (*infra.RenderResult, error) {
		return s.renderer.Render(ctx, &inv, req.ExtraDetails)
	})

	if !req.Store {
		result, err := render(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrPageCount, result.PageCount)
		telemetry.SetOK(span)
		return &RenderOutput{Document: toDocument(result)}, nil
	}

	job, err := domain.NewPrintJob(tenantID, domain.JobKindSingle, []string{jobInvoiceNumber(&inv)}, infra.FileNameFor(&inv), userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp, err := s.runJob(ctx, job, render)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return &RenderOutput{Job: resp}, nil
}

// RenderBatch lays out the invoices one after another into a single document,
// strictly in request order
func (s *InvoicePrintService) RenderBatch(ctx context.Context, tenantID, userID uuid.UUID, req RenderBatchRequest) (*RenderOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "render_batch",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceCount, len(req.Invoices),
	)
	defer span.End()

	if err := s.validateBatch(req.Invoices); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Store && !s.StorageEnabled() {
		return nil, errStorageDisabled
	}

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = "invoices.pdf"
	}
	render := profiled("render_batch", func(ctx context.Context) (*infra.RenderResult, error) {
		return s.renderer.RenderBatch(ctx, req.Invoices, req.ExtraDetails, fileName)
	})

	if !req.Store {
		result, err := render(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrPageCount, result.PageCount)
		telemetry.SetOK(span)
		return &RenderOutput{Document: toDocument(result)}, nil
	}

	numbers := make([]string, len(req.Invoices))
	for i := range req.Invoices {
		numbers[i] = jobInvoiceNumber(&req.Invoices[i])
	}
	job, err := domain.NewPrintJob(tenantID, domain.JobKindBatch, numbers, fileName, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp, err := s.runJob(ctx, job, render)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return &RenderOutput{Job: resp}, nil
}

func (s *InvoicePrintService) validateBatch(invoices []invoice.Invoice) error {
	if len(invoices) == 0 {
		return shared.NewDomainError("INVALID_INVOICES", "At least one invoice is required")
	}
	if len(invoices) > s.config.MaxBatchSize {
		return shared.NewDomainError("BATCH_TOO_LARGE",
			fmt.Sprintf("A batch holds at most %d invoices, got %d", s.config.MaxBatchSize, len(invoices)))
	}
	for i := range invoices {
		if err := invoices[i].Validate(); err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				return shared.NewDomainError(domainErr.Code, fmt.Sprintf("Invoice %d: %s", i+1, domainErr.Message))
			}
			return err
		}
	}
	return nil
}

// runJob drives a job through rendering and storage, saving it after every
// transition. A failure is recorded on the job before it is returned.
// profiled runs render under an operation profiling label
func profiled(operation string, render func(context.Context) (*infra.RenderResult, error)) func(context.Context) (*infra.RenderResult, error) {
	return func(ctx context.Context) (result *infra.RenderResult, err error) {
		telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(operation, nil), func(ctx context.Context) {
			result, err = render(ctx)
		})
		return result, err
	}
}

func (s *InvoicePrintService) runJob(ctx context.Context, job *domain.PrintJob, render func(context.Context) (*infra.RenderResult, error)) (*PrintJobResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanService, "run_job",
		telemetry.SpanAttrJobID, job.ID.String(),
		telemetry.SpanAttrJobKind, job.Kind.String(),
	)
	defer span.End()

	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}

	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	result, err := render(ctx)
	if err != nil {
		s.logger.Error("invoice rendering failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		s.failJob(ctx, job, "Rendering failed: "+err.Error())
		telemetry.RecordError(span, err)
		return nil, err
	}

	stored, err := s.pdfStorage.Store(ctx, &infra.StoreRequest{
		TenantID: job.TenantID,
		JobID:    job.ID,
		PDFData:  result.PDFData,
	})
	if err != nil {
		s.logger.Error("PDF storage failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		s.failJob(ctx, job, "Failed to save PDF file")
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	rendering := *job
	if err := job.Complete(stored.Path, result.PageCount, stored.Size); err != nil {
		s.abandonPDF(ctx, job, stored.Path, "Failed to record stored PDF")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		*job = rendering
		s.logger.Error("completed job could not be saved", zap.Error(err), zap.String("job_id", job.ID.String()))
		s.abandonPDF(ctx, job, stored.Path, "Failed to record stored PDF")
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPageCount, result.PageCount,
		telemetry.SpanAttrFileSize, stored.Size,
	)
	telemetry.SetOK(span)

	s.logger.Info("invoice document stored",
		zap.String("job_id", job.ID.String()),
		zap.String("kind", job.Kind.String()),
		zap.Int("pages", result.PageCount),
		zap.String("path", stored.Path))

	return toJobResponse(job, s.downloadURL(job)), nil
}

// abandonPDF fails a job whose document was stored but never recorded as
// complete, and removes the document so no unreferenced file is left behind
func (s *InvoicePrintService) abandonPDF(ctx context.Context, job *domain.PrintJob, path, message string) {
	s.failJob(ctx, job, message)
	if err := s.pdfStorage.Delete(context.WithoutCancel(ctx), path); err != nil {
		s.logger.Warn("failed to delete unrecorded PDF", zap.Error(err), zap.String("path", path))
	}
}

// failJob records the failure; the job is saved with a context that outlives
// a cancelled request
func (s *InvoicePrintService) failJob(ctx context.Context, job *domain.PrintJob, message string) {
	if err := job.Fail(message); err != nil {
		s.logger.Warn("cannot mark job failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		return
	}
	if err := s.jobRepo.Save(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Error("failed to save failed job", zap.Error(err), zap.String("job_id", job.ID.String()))
	}
}

// =============================================================================
// Print Job Operations
// =============================================================================

// GetJob retrieves a print job by ID
func (s *InvoicePrintService) GetJob(ctx context.Context, tenantID, jobID uuid.UUID) (*PrintJobResponse, error) {
	job, err := s.findJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	return toJobResponse(job, s.downloadURL(job)), nil
}

// ListJobs retrieves a paginated list of print jobs
func (s *InvoicePrintService) ListJobs(ctx context.Context, tenantID uuid.UUID, req ListJobsRequest) (*ListJobsResponse, error) {
	if !s.StorageEnabled() {
		return nil, errStorageDisabled
	}

	filter := domain.PrintJobFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if req.Status != "" {
		status := domain.JobStatus(strings.ToUpper(req.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid job status: "+req.Status)
		}
		filter.Status = &status
	}
	if req.Kind != "" {
		kind := domain.JobKind(strings.ToUpper(req.Kind))
		if !kind.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid job kind: "+req.Kind)
		}
		filter.Kind = &kind
	}

	jobs, err := s.jobRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	total, err := s.jobRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	items := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		items[i] = *toJobResponse(&jobs[i], s.downloadURL(&jobs[i]))
	}

	return &ListJobsResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// OpenJobPDF opens the stored document of a completed job
func (s *InvoicePrintService) OpenJobPDF(ctx context.Context, tenantID, jobID uuid.UUID) (*JobDocument, error) {
	job, err := s.findJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.HasPDF() {
		return nil, shared.NewDomainError("JOB_NOT_COMPLETED", "PDF not available. Job status: "+job.Status.String())
	}

	content, err := s.pdfStorage.Get(ctx, job.OutputPath)
	if err != nil {
		if errors.Is(err, infra.ErrPDFNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "PDF file not found")
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &JobDocument{
		FileName: job.FileName,
		Size:     job.FileSize,
		Content:  content,
	}, nil
}

// CleanupExpired removes jobs older than the retention period together with
// their stored documents, then sweeps orphaned files. It returns the number
// of jobs removed.
func (s *InvoicePrintService) CleanupExpired(ctx context.Context) (int, error) {
	if s.config.Retention <= 0 || !s.StorageEnabled() {
		return 0, nil
	}

	cutoff := s.now().Add(-s.config.Retention)
	paths, err := s.jobRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired jobs: %w", err)
	}

	for _, p := range paths {
		if err := s.pdfStorage.Delete(ctx, p); err != nil && !errors.Is(err, infra.ErrPDFNotFound) {
			s.logger.Warn("failed to delete stored PDF", zap.String("path", p), zap.Error(err))
		}
	}

	orphans, err := s.pdfStorage.CleanupOlderThan(ctx, s.config.Retention)
	if err != nil {
		s.logger.Warn("failed to sweep expired PDFs", zap.Error(err))
	}

	s.logger.Info("expired print jobs removed",
		zap.Int("jobs", len(paths)),
		zap.Int("orphaned_files", orphans),
		zap.Time("cutoff", cutoff))

	return len(paths), nil
}

func (s *InvoicePrintService) findJob(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.PrintJob, error) {
	if !s.StorageEnabled() {
		return nil, errStorageDisabled
	}
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *InvoicePrintService) downloadURL(job *domain.PrintJob) string {
	return strings.TrimRight(s.config.DownloadBasePath, "/") + "/" + job.ID.String() + "/download"
}

// =============================================================================
// Helper Functions
// =============================================================================

var errStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Document storage is not configured")

func jobInvoiceNumber(inv *invoice.Invoice) string {
	if number := strings.TrimSpace(inv.InvoiceNumber); number != "" {
		return number
	}
	return inv.Key()
}

func toDocument(result *infra.RenderResult) *Document {
	return &Document{
		FileName:  result.FileName,
		PageCount: result.PageCount,
		Data:      result.PDFData,
	}
}

package printing

import (
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxErrorMessageLength bounds the stored failure text
const MaxErrorMessageLength = 1000

// PrintJob records one invoice export: which invoices went into the
// document, where the PDF was stored, and how rendering ended.
type PrintJob struct {
	shared.TenantAggregateRoot
	Kind              JobKind
	InvoiceNumbers    []string
	FileName          string
	Status            JobStatus
	PageCount         int
	FileSize          int64
	OutputPath        string
	ErrorMessage      string
	RenderStartedAt   *time.Time
	RenderCompletedAt *time.Time
}

// NewPrintJob creates a pending print job for the given invoices
func NewPrintJob(tenantID uuid.UUID, kind JobKind, invoiceNumbers []string, fileName string, createdBy uuid.UUID) (*PrintJob, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOB_KIND", "Invalid job kind: "+kind.String())
	}
	if len(invoiceNumbers) == 0 {
		return nil, shared.NewDomainError("INVALID_INVOICES", "At least one invoice is required")
	}
	if kind == JobKindSingle && len(invoiceNumbers) != 1 {
		return nil, shared.NewDomainError("INVALID_INVOICES", "A single export covers exactly one invoice")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}

	job := &PrintJob{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		InvoiceNumbers:      append([]string(nil), invoiceNumbers...),
		FileName:            fileName,
		Status:              JobStatusPending,
	}
	job.SetCreatedBy(createdBy)

	return job, nil
}

// StartRendering marks the job as rendering
func (j *PrintJob) StartRendering() error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start rendering from status: "+j.Status.String())
	}

	now := time.Now()
	j.Status = JobStatusRendering
	j.RenderStartedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	return nil
}

// Complete marks the job as completed with the stored document location
func (j *PrintJob) Complete(outputPath string, pageCount int, fileSize int64) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}
	if outputPath == "" {
		return shared.NewDomainError("INVALID_OUTPUT_PATH", "Output path cannot be empty")
	}
	if pageCount < 1 {
		return shared.NewDomainError("INVALID_PAGE_COUNT", "A document has at least one page")
	}

	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputPath = outputPath
	j.PageCount = pageCount
	j.FileSize = fileSize
	j.RenderCompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	return nil
}

// Fail marks the job as failed with an error message
func (j *PrintJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}

	if len(errorMessage) > MaxErrorMessageLength {
		errorMessage = errorMessage[:MaxErrorMessageLength]
	}

	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	j.RenderCompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	return nil
}

// IsCompleted returns true if the job is completed
func (j *PrintJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasPDF returns true if a stored document is available
func (j *PrintJob) HasPDF() bool {
	return j.IsCompleted() && j.OutputPath != ""
}

// RenderDuration returns how long rendering took, or zero while running
func (j *PrintJob) RenderDuration() time.Duration {
	if j.RenderStartedAt == nil || j.RenderCompletedAt == nil {
		return 0
	}
	return j.RenderCompletedAt.Sub(*j.RenderStartedAt)
}

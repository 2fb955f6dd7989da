package printing

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	// FindByIDForTenant finds a job by ID within a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PrintJob, error)

	// FindAllForTenant lists jobs for a tenant, newest first by default
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PrintJobFilter) ([]PrintJob, error)

	// CountForTenant counts jobs matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PrintJobFilter) (int64, error)

	// Save inserts or updates a job
	Save(ctx context.Context, job *PrintJob) error

	// DeleteOlderThan removes jobs created before the cutoff and returns
	// their output paths so stored documents can be removed too
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// PrintJobFilter extends the standard filter with print job criteria
type PrintJobFilter struct {
	shared.Filter
	Status *JobStatus
	Kind   *JobKind
}

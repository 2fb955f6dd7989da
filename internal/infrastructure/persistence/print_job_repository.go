package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrintJobSortFields defines allowed sort fields for print jobs
var PrintJobSortFields = map[string]bool{
	"created_at":          true,
	"updated_at":          true,
	"status":              true,
	"kind":                true,
	"file_name":           true,
	"page_count":          true,
	"render_completed_at": true,
}

// defaultPageSize applies when a filter does not set one
const defaultPageSize = 20

// GormPrintJobRepository implements printing.PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)

// FindByIDForTenant finds a job by ID within a specific tenant
func (r *GormPrintJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists a tenant's jobs page by page
func (r *GormPrintJobRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter printing.PrintJobFilter) ([]printing.PrintJob, error) {
	var jobModels []models.PrintJobModel
	query := r.scoped(ctx, tenantID, filter)
	query = r.applyPaging(query, filter.Filter)

	if err := query.Find(&jobModels).Error; err != nil {
		return nil, err
	}

	jobs := make([]printing.PrintJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs, nil
}

// CountForTenant counts jobs matching the filter, ignoring paging
func (r *GormPrintJobRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter printing.PrintJobFilter) (int64, error) {
	var count int64
	if err := r.scoped(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save saves a job (insert or update)
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	model := models.PrintJobModelFromDomain(job)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteOlderThan removes jobs created before cutoff and returns the output
// paths of the removed jobs that had a stored document
func (r *GormPrintJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PrintJobModel{}).
			Where("created_at < ? AND output_path <> ''", cutoff).
			Order("created_at ASC").
			Pluck("output_path", &paths).Error; err != nil {
			return err
		}
		return tx.Where("created_at < ?", cutoff).Delete(&models.PrintJobModel{}).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *GormPrintJobRepository) scoped(ctx context.Context, tenantID uuid.UUID, filter printing.PrintJobFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.PrintJobModel{}).Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	return query
}

// applyPaging applies sort order and pagination
func (r *GormPrintJobRepository) applyPaging(query *gorm.DB, filter shared.Filter) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, PrintJobSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder).Order("id " + sortOrder)

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return query.Offset(filter.Offset()).Limit(pageSize)
}

package printing_test

import (
	"context"
	"errors"
	"io"
	"runtime/pprof"
	"strings"
	"testing"
	"time"

	"github.com/dms/backend/internal/application/printing"
	"github.com/dms/backend/internal/domain/invoice"
	domain "github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, inv *invoice.Invoice, extra *invoice.ExtraDetails) (*infra.RenderResult, error) {
	args := m.Called(ctx, inv, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockRenderer) RenderBatch(ctx context.Context, invoices []invoice.Invoice, extras invoice.ExtraDetailsIndex, fileName string) (*infra.RenderResult, error) {
	args := m.Called(ctx, invoices, extras, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
	// statuses records the job status at every Save
	statuses []domain.JobStatus
}

func (m *MockJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.PrintJob, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrintJob), args.Error(1)
}

func (m *MockJobRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter domain.PrintJobFilter) ([]domain.PrintJob, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrintJob), args.Error(1)
}

func (m *MockJobRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter domain.PrintJobFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) Save(ctx context.Context, job *domain.PrintJob) error {
	m.statuses = append(m.statuses, job.Status)
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPDFStorage struct {
	mock.Mock
}

func (m *MockPDFStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.StoreResult), args.Error(1)
}

func (m *MockPDFStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockPDFStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockPDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockPDFStorage) GetURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	renderer *MockRenderer
	repo     *MockJobRepository
	storage  *MockPDFStorage
	service  *printing.InvoicePrintService
}

func newFixture(t *testing.T, cfg printing.ServiceConfig) *fixture {
	t.Helper()
	f := &fixture{
		renderer: new(MockRenderer),
		repo:     new(MockJobRepository),
		storage:  new(MockPDFStorage),
	}
	f.service = printing.NewInvoicePrintService(f.renderer, f.repo, f.storage, cfg, zap.NewNop())
	t.Cleanup(func() {
		f.renderer.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.storage.AssertExpectations(t)
	})
	return f
}

func testInvoice(number string) invoice.Invoice {
	return invoice.Invoice{
		ID:            invoice.ID("id-" + number),
		InvoiceNumber: number,
		DateBook:      "2024-05-02",
		OutletName:    "Green Mart",
		Lines: []invoice.LineItem{{
			ItemCode:           "P-01",
			ItemName:           "Tea 100g",
			TotalBookQty:       decimal.NewFromInt(8),
			SellUnitPrice:      decimal.NewFromInt(125),
			TotalBookSellValue: decimal.NewFromInt(1000),
		}},
	}
}

// labelled matches a context carrying the given profiling operation label
func labelled(operation string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		v, _ := pprof.Label(ctx, "operation")
		return v == operation
	})
}

func renderResult(name string, pages int) *infra.RenderResult {
	return &infra.RenderResult{PDFData: []byte("%PDF-1.3 test"), PageCount: pages, FileName: name}
}

// =============================================================================
// Render Tests
// =============================================================================

func TestRenderInvoice_Unstored(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID, userID := uuid.New(), uuid.New()
	extra := &invoice.ExtraDetails{RouteCode: "R-7"}

	f.renderer.On("Render", labelled("render_invoice"), mock.MatchedBy(func(inv *invoice.Invoice) bool {
		return inv.InvoiceNumber == "INV-001"
	}), extra).Return(renderResult("invoice-INV-001.pdf", 1), nil)

	out, err := f.service.RenderInvoice(context.Background(), tenantID, userID, printing.RenderInvoiceRequest{
		Invoice:      testInvoice("INV-001"),
		ExtraDetails: extra,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Document)
	assert.Nil(t, out.Job)
	assert.Equal(t, "invoice-INV-001.pdf", out.Document.FileName)
	assert.Equal(t, 1, out.Document.PageCount)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRenderInvoice_InvalidInvoice(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})

	_, err := f.service.RenderInvoice(context.Background(), uuid.New(), uuid.New(), printing.RenderInvoiceRequest{})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INVOICE", domainErr.Code)
}

func TestRenderInvoice_Stored(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID, userID := uuid.New(), uuid.New()

	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*printing.PrintJob")).Return(nil).Times(3)
	f.renderer.On("Render", mock.Anything, mock.Anything, (*invoice.ExtraDetails)(nil)).
		Return(renderResult("invoice-INV-001.pdf", 2), nil)
	f.storage.On("Store", mock.Anything, mock.MatchedBy(func(req *infra.StoreRequest) bool {
		return req.TenantID == tenantID && req.JobID != uuid.Nil && len(req.PDFData) > 0
	})).Return(&infra.StoreResult{Path: "t/2024/05/job.pdf", Size: 4096}, nil)

	out, err := f.service.RenderInvoice(context.Background(), tenantID, userID, printing.RenderInvoiceRequest{
		Invoice: testInvoice("INV-001"),
		Store:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Job)
	assert.Nil(t, out.Document)

	job := out.Job
	assert.Equal(t, "COMPLETED", job.Status)
	assert.Equal(t, "SINGLE", job.Kind)
	assert.Equal(t, []string{"INV-001"}, job.InvoiceNumbers)
	assert.Equal(t, "invoice-INV-001.pdf", job.FileName)
	assert.Equal(t, 2, job.PageCount)
	assert.Equal(t, int64(4096), job.FileSize)
	assert.Equal(t, userID.String(), job.CreatedBy)
	assert.Equal(t, "/api/v1/print/jobs/"+job.ID+"/download", job.DownloadURL)

	assert.Equal(t, []domain.JobStatus{
		domain.JobStatusPending,
		domain.JobStatusRendering,
		domain.JobStatusCompleted,
	}, f.repo.statuses)
}

func TestRenderInvoice_RenderFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	renderErr := infra.NewRenderError(infra.ErrCodeAssetFetchFailed, "failed to fetch logo", errors.New("404"))

	var saved *domain.PrintJob
	f.repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.PrintJob)
	}).Return(nil).Times(3)
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil, renderErr)

	_, err := f.service.RenderInvoice(context.Background(), uuid.New(), uuid.New(), printing.RenderInvoiceRequest{
		Invoice: testInvoice("INV-002"),
		Store:   true,
	})
	require.Error(t, err)
	var re *infra.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, infra.ErrCodeAssetFetchFailed, re.Code)

	require.NotNil(t, saved)
	assert.Equal(t, domain.JobStatusFailed, saved.Status)
	assert.Contains(t, saved.ErrorMessage, "failed to fetch logo")
	f.storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestRenderInvoice_StorageFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})

	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Times(3)
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(renderResult("invoice-INV-003.pdf", 1), nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := f.service.RenderInvoice(context.Background(), uuid.New(), uuid.New(), printing.RenderInvoiceRequest{
		Invoice: testInvoice("INV-003"),
		Store:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store PDF")
	assert.Equal(t, domain.JobStatusFailed, f.repo.statuses[len(f.repo.statuses)-1])
}

func TestRenderInvoice_CompletionSaveFailureRemovesPDF(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})

	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Times(2)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(renderResult("invoice-INV-005.pdf", 1), nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Path: "t/2024/05/job.pdf", Size: 512}, nil)
	f.storage.On("Delete", mock.Anything, "t/2024/05/job.pdf").Return(nil).Once()

	_, err := f.service.RenderInvoice(context.Background(), uuid.New(), uuid.New(), printing.RenderInvoiceRequest{
		Invoice: testInvoice("INV-005"),
		Store:   true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Equal(t, []domain.JobStatus{
		domain.JobStatusPending,
		domain.JobStatusRendering,
		domain.JobStatusCompleted,
		domain.JobStatusFailed,
	}, f.repo.statuses)
}

func TestRenderInvoice_StoreWithoutStorage(t *testing.T) {
	renderer := new(MockRenderer)
	service := printing.NewInvoicePrintService(renderer, nil, nil, printing.ServiceConfig{}, nil)

	_, err := service.RenderInvoice(context.Background(), uuid.New(), uuid.New(), printing.RenderInvoiceRequest{
		Invoice: testInvoice("INV-004"),
		Store:   true,
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "STORAGE_DISABLED", domainErr.Code)
	assert.False(t, service.StorageEnabled())
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestRenderBatch_Unstored(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	invoices := []invoice.Invoice{testInvoice("INV-010"), testInvoice("INV-011")}
	extras := invoice.ExtraDetailsIndex{"id-INV-011": {RouteCode: "R-1"}}

	f.renderer.On("RenderBatch", labelled("render_batch"), invoices, extras, "invoices.pdf").
		Return(renderResult("invoices.pdf", 3), nil)

	out, err := f.service.RenderBatch(context.Background(), uuid.New(), uuid.New(), printing.RenderBatchRequest{
		Invoices:     invoices,
		ExtraDetails: extras,
		FileName:     "   ",
	})
	require.NoError(t, err)
	assert.Equal(t, "invoices.pdf", out.Document.FileName)
	assert.Equal(t, 3, out.Document.PageCount)
}

func TestRenderBatch_Stored(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	invoices := []invoice.Invoice{testInvoice("INV-010"), {ID: "77"}}

	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Times(3)
	f.renderer.On("RenderBatch", mock.Anything, invoices, invoice.ExtraDetailsIndex(nil), "may.pdf").
		Return(renderResult("may.pdf", 4), nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Path: "p.pdf", Size: 10}, nil)

	out, err := f.service.RenderBatch(context.Background(), uuid.New(), uuid.New(), printing.RenderBatchRequest{
		Invoices: invoices,
		FileName: "may.pdf",
		Store:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "BATCH", out.Job.Kind)
	assert.Equal(t, []string{"INV-010", "77"}, out.Job.InvoiceNumbers)
	assert.Equal(t, "may.pdf", out.Job.FileName)
	assert.Equal(t, 4, out.Job.PageCount)
}

func TestRenderBatch_Validation(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{MaxBatchSize: 2})
	ctx := context.Background()

	tests := []struct {
		name     string
		invoices []invoice.Invoice
		code     string
		message  string
	}{
		{"empty", nil, "INVALID_INVOICES", "At least one invoice"},
		{"too large", []invoice.Invoice{testInvoice("1"), testInvoice("2"), testInvoice("3")}, "BATCH_TOO_LARGE", "at most 2"},
		{"invalid member", []invoice.Invoice{testInvoice("1"), {}}, "INVALID_INVOICE", "Invoice 2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RenderBatch(ctx, uuid.New(), uuid.New(), printing.RenderBatchRequest{Invoices: tt.invoices})
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.code, domainErr.Code)
			assert.Contains(t, domainErr.Message, tt.message)
		})
	}
}

// =============================================================================
// Print Job Tests
// =============================================================================

func completedJob(t *testing.T, tenantID uuid.UUID) *domain.PrintJob {
	t.Helper()
	job, err := domain.NewPrintJob(tenantID, domain.JobKindSingle, []string{"INV-001"}, "invoice-INV-001.pdf", uuid.New())
	require.NoError(t, err)
	require.NoError(t, job.StartRendering())
	require.NoError(t, job.Complete("t/2024/05/job.pdf", 1, 12))
	return job
}

func TestGetJob(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{DownloadBasePath: "/dl/"})
	tenantID := uuid.New()
	job := completedJob(t, tenantID)
	missing := uuid.New()

	f.repo.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.repo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)

	resp, err := f.service.GetJob(context.Background(), tenantID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID.String(), resp.ID)
	assert.Equal(t, "/dl/"+job.ID.String()+"/download", resp.DownloadURL)

	_, err = f.service.GetJob(context.Background(), tenantID, missing)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestListJobs(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID := uuid.New()
	job := completedJob(t, tenantID)
	status := domain.JobStatusCompleted

	matchFilter := mock.MatchedBy(func(filter domain.PrintJobFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20 &&
			filter.Status != nil && *filter.Status == status && filter.Kind == nil
	})
	f.repo.On("FindAllForTenant", mock.Anything, tenantID, matchFilter).Return([]domain.PrintJob{*job}, nil)
	f.repo.On("CountForTenant", mock.Anything, tenantID, matchFilter).Return(int64(1), nil)

	resp, err := f.service.ListJobs(context.Background(), tenantID, printing.ListJobsRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.NotEmpty(t, resp.Items[0].DownloadURL)
}

func TestListJobs_InvalidFilter(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})

	_, err := f.service.ListJobs(context.Background(), uuid.New(), printing.ListJobsRequest{Status: "DONE"})
	require.Error(t, err)
	_, err = f.service.ListJobs(context.Background(), uuid.New(), printing.ListJobsRequest{Kind: "ARCHIVE"})
	require.Error(t, err)
}

func TestOpenJobPDF(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID := uuid.New()
	job := completedJob(t, tenantID)

	f.repo.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.storage.On("Get", mock.Anything, "t/2024/05/job.pdf").Return(io.NopCloser(strings.NewReader("%PDF")), nil)

	doc, err := f.service.OpenJobPDF(context.Background(), tenantID, job.ID)
	require.NoError(t, err)
	defer doc.Content.Close()
	assert.Equal(t, "invoice-INV-001.pdf", doc.FileName)
	assert.Equal(t, int64(12), doc.Size)
	data, err := io.ReadAll(doc.Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestOpenJobPDF_NotCompleted(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID := uuid.New()
	job, err := domain.NewPrintJob(tenantID, domain.JobKindSingle, []string{"INV-001"}, "a.pdf", uuid.New())
	require.NoError(t, err)

	f.repo.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)

	_, err = f.service.OpenJobPDF(context.Background(), tenantID, job.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "JOB_NOT_COMPLETED", domainErr.Code)
}

func TestOpenJobPDF_FileMissing(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})
	tenantID := uuid.New()
	job := completedJob(t, tenantID)

	f.repo.On("FindByIDForTenant", mock.Anything, tenantID, job.ID).Return(job, nil)
	f.storage.On("Get", mock.Anything, job.OutputPath).
		Return(nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "PDF not found", infra.ErrPDFNotFound))

	_, err := f.service.OpenJobPDF(context.Background(), tenantID, job.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestCleanupExpired(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{Retention: 48 * time.Hour})

	f.repo.On("DeleteOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) > 47*time.Hour && time.Since(cutoff) < 49*time.Hour
	})).Return([]string{"a.pdf", "b.pdf"}, nil)
	f.storage.On("Delete", mock.Anything, "a.pdf").Return(nil)
	f.storage.On("Delete", mock.Anything, "b.pdf").Return(errors.New("permission denied"))
	f.storage.On("CleanupOlderThan", mock.Anything, 48*time.Hour).Return(1, nil)

	removed, err := f.service.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestCleanupExpired_Disabled(t *testing.T) {
	f := newFixture(t, printing.ServiceConfig{})

	removed, err := f.service.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

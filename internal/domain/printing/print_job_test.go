package printing

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPrintJob(t *testing.T) *PrintJob {
	t.Helper()
	job, err := NewPrintJob(uuid.New(), JobKindSingle, []string{"INV-001"}, "invoice-INV-001.pdf", uuid.New())
	require.NoError(t, err)
	return job
}

func TestNewPrintJob(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name        string
		tenantID    uuid.UUID
		kind        JobKind
		invoices    []string
		fileName    string
		expectError bool
		errorMsg    string
	}{
		{
			name:     "valid single job",
			tenantID: tenantID,
			kind:     JobKindSingle,
			invoices: []string{"INV-001"},
			fileName: "invoice-INV-001.pdf",
		},
		{
			name:     "valid batch job",
			tenantID: tenantID,
			kind:     JobKindBatch,
			invoices: []string{"INV-001", "INV-002"},
			fileName: "march.pdf",
		},
		{
			name:        "nil tenant",
			tenantID:    uuid.Nil,
			kind:        JobKindSingle,
			invoices:    []string{"INV-001"},
			fileName:    "a.pdf",
			expectError: true,
			errorMsg:    "Tenant ID cannot be empty",
		},
		{
			name:        "unknown kind",
			tenantID:    tenantID,
			kind:        JobKind("ARCHIVE"),
			invoices:    []string{"INV-001"},
			fileName:    "a.pdf",
			expectError: true,
			errorMsg:    "Invalid job kind",
		},
		{
			name:        "no invoices",
			tenantID:    tenantID,
			kind:        JobKindBatch,
			fileName:    "a.pdf",
			expectError: true,
			errorMsg:    "At least one invoice is required",
		},
		{
			name:        "single with two invoices",
			tenantID:    tenantID,
			kind:        JobKindSingle,
			invoices:    []string{"INV-001", "INV-002"},
			fileName:    "a.pdf",
			expectError: true,
			errorMsg:    "exactly one invoice",
		},
		{
			name:        "blank file name",
			tenantID:    tenantID,
			kind:        JobKindSingle,
			invoices:    []string{"INV-001"},
			fileName:    "  ",
			expectError: true,
			errorMsg:    "File name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewPrintJob(tt.tenantID, tt.kind, tt.invoices, tt.fileName, userID)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tenantID, job.TenantID)
			assert.Equal(t, tt.kind, job.Kind)
			assert.Equal(t, tt.invoices, job.InvoiceNumbers)
			assert.Equal(t, JobStatusPending, job.Status)
			assert.Equal(t, 1, job.GetVersion())
			require.NotNil(t, job.CreatedBy)
			assert.Equal(t, userID, *job.CreatedBy)
			assert.False(t, job.HasPDF())
			assert.NotEqual(t, uuid.Nil, job.ID)
		})
	}
}

func TestPrintJob_Lifecycle(t *testing.T) {
	job := createTestPrintJob(t)

	require.NoError(t, job.StartRendering())
	assert.Equal(t, JobStatusRendering, job.Status)
	assert.NotNil(t, job.RenderStartedAt)

	require.NoError(t, job.Complete("tenant/2024/05/job.pdf", 2, 4096))
	assert.True(t, job.IsCompleted())
	assert.True(t, job.HasPDF())
	assert.Equal(t, 2, job.PageCount)
	assert.Equal(t, int64(4096), job.FileSize)
	assert.Equal(t, 3, job.GetVersion())
	assert.GreaterOrEqual(t, job.RenderDuration().Nanoseconds(), int64(0))

	err := job.Fail("late failure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal status")
}

func TestPrintJob_StartRendering_InvalidState(t *testing.T) {
	for _, status := range []JobStatus{JobStatusRendering, JobStatusCompleted, JobStatusFailed} {
		t.Run(status.String(), func(t *testing.T) {
			job := createTestPrintJob(t)
			job.Status = status

			err := job.StartRendering()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Cannot start rendering")
		})
	}
}

func TestPrintJob_Complete_Validation(t *testing.T) {
	job := createTestPrintJob(t)
	err := job.Complete("x.pdf", 1, 10)
	require.Error(t, err, "pending jobs cannot complete")

	require.NoError(t, job.StartRendering())
	assert.Error(t, job.Complete("", 1, 10))
	assert.Error(t, job.Complete("x.pdf", 0, 10))
	assert.Equal(t, JobStatusRendering, job.Status)
}

func TestPrintJob_Fail(t *testing.T) {
	job := createTestPrintJob(t)
	require.NoError(t, job.StartRendering())

	require.NoError(t, job.Fail(strings.Repeat("x", MaxErrorMessageLength+50)))
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Len(t, job.ErrorMessage, MaxErrorMessageLength)
	assert.True(t, job.IsTerminal())
	assert.False(t, job.HasPDF())
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusRendering))
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusPending.CanTransitionTo(JobStatusCompleted))
	assert.True(t, JobStatusRendering.CanTransitionTo(JobStatusCompleted))
	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusRendering))
	assert.False(t, JobStatus("UNKNOWN").IsValid())
	assert.True(t, JobKindBatch.IsValid())
}

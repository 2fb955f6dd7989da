package models

import (
	"encoding/json"
	"time"

	"github.com/dms/backend/internal/domain/printing"
)

// PrintJobModel is the persistence model for print jobs
type PrintJobModel struct {
	TenantAggregateModel
	Kind               string `gorm:"type:varchar(20);not null"`
	InvoiceNumbersJSON string `gorm:"column:invoice_numbers;type:jsonb;not null;default:'[]'"`
	FileName           string `gorm:"type:varchar(255);not null"`
	Status             string `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PageCount          int    `gorm:"not null;default:0"`
	FileSize           int64  `gorm:"not null;default:0"`
	OutputPath         string `gorm:"type:varchar(500)"`
	ErrorMessage       string `gorm:"type:text"`
	// Column types for the timestamps come from the SQL migrations
	RenderStartedAt   *time.Time
	RenderCompletedAt *time.Time
}

// TableName returns the table name for GORM
func (PrintJobModel) TableName() string {
	return "print_jobs"
}

// ToDomain converts the persistence model to a domain entity
func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	job := &printing.PrintJob{
		Kind:              printing.JobKind(m.Kind),
		InvoiceNumbers:    decodeInvoiceNumbers(m.InvoiceNumbersJSON),
		FileName:          m.FileName,
		Status:            printing.JobStatus(m.Status),
		PageCount:         m.PageCount,
		FileSize:          m.FileSize,
		OutputPath:        m.OutputPath,
		ErrorMessage:      m.ErrorMessage,
		RenderStartedAt:   m.RenderStartedAt,
		RenderCompletedAt: m.RenderCompletedAt,
	}
	m.PopulateTenantAggregateRoot(&job.TenantAggregateRoot)
	return job
}

// PrintJobModelFromDomain creates a persistence model from a domain entity
func PrintJobModelFromDomain(job *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{
		Kind:               string(job.Kind),
		InvoiceNumbersJSON: encodeInvoiceNumbers(job.InvoiceNumbers),
		FileName:           job.FileName,
		Status:             string(job.Status),
		PageCount:          job.PageCount,
		FileSize:           job.FileSize,
		OutputPath:         job.OutputPath,
		ErrorMessage:       job.ErrorMessage,
		RenderStartedAt:    job.RenderStartedAt,
		RenderCompletedAt:  job.RenderCompletedAt,
	}
	m.FromDomainTenantAggregateRoot(job.TenantAggregateRoot)
	return m
}

// Invoice numbers are free text and may contain any separator, so they are
// stored as a JSON array.
func encodeInvoiceNumbers(numbers []string) string {
	if len(numbers) == 0 {
		return "[]"
	}
	if jsonBytes, err := json.Marshal(numbers); err == nil {
		return string(jsonBytes)
	}
	return "[]"
}

func decodeInvoiceNumbers(s string) []string {
	if s == "" {
		return nil
	}
	var numbers []string
	if err := json.Unmarshal([]byte(s), &numbers); err != nil || len(numbers) == 0 {
		return nil
	}
	return numbers
}

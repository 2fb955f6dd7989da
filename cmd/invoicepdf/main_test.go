package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dms/backend/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadInvoices(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr string
	}{
		{
			name:    "single object",
			content: `{"id": 1001, "invoiceNumber": "INV/2024/001"}`,
			want:    []string{"INV/2024/001"},
		},
		{
			name:    "array keeps input order",
			content: "\n  [{\"id\": \"b\", \"invoiceNumber\": \"INV-B\"}, {\"id\": \"a\", \"invoiceNumber\": \"INV-A\"}]\n",
			want:    []string{"INV-B", "INV-A"},
		},
		{
			name:    "empty array",
			content: `[]`,
			wantErr: "no invoices in",
		},
		{
			name:    "malformed array",
			content: `[{"invoiceNumber": }]`,
			wantErr: "decode invoice array",
		},
		{
			name:    "malformed object",
			content: `{"invoiceNumber": 12`,
			wantErr: "decode invoice",
		},
		{
			name:    "empty file",
			content: "  \n",
			wantErr: "decode invoice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "invoices.json", tt.content)

			invoices, err := readInvoices(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, invoices)
				return
			}
			require.NoError(t, err)
			numbers := make([]string, len(invoices))
			for i := range invoices {
				numbers[i] = invoices[i].InvoiceNumber
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}

func TestReadInvoices_NumericID(t *testing.T) {
	path := writeFile(t, "invoice.json", `{"id": 1001, "invoiceNumber": "INV/2024/001"}`)

	invoices, err := readInvoices(path)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoice.ID("1001"), invoices[0].ID)
}

func TestReadInvoices_MissingFile(t *testing.T) {
	_, err := readInvoices(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadJSON_Extras(t *testing.T) {
	path := writeFile(t, "extras.json", `{"1001": {"agentName": "Agent For 1001"}}`)

	var extras invoice.ExtraDetailsIndex
	require.NoError(t, readJSON(path, &extras))
	got := extras.For(&invoice.Invoice{ID: "1001"})
	require.NotNil(t, got)
	assert.Equal(t, "Agent For 1001", got.AgentName)
}

package migration

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add print jobs", "add_print_jobs"},
		{"Add-Print-Jobs", "add_print_jobs"},
		{"ADD__PRINT__JOBS", "add_print_jobs"},
		{"index 2", "index_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestListMigrations_Embedded(t *testing.T) {
	files, err := ListMigrations(Embedded())
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, uint(1), files[0].Version)
	assert.Equal(t, "create_print_jobs", files[0].Name)
	assert.Equal(t, "000001_create_print_jobs.down.sql", files[0].DownPath)

	require.Len(t, files, 2)
	assert.Equal(t, uint(2), files[1].Version)
	assert.Equal(t, "print_jobs_invoice_numbers_json", files[1].Name)
	assert.NotEmpty(t, files[1].DownPath)
}

func TestListMigrations_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_late.up.sql":    {},
		"000002_early.up.sql":   {},
		"000002_early.down.sql": {},
		"notes.txt":             {},
		"bogus_name.up.sql":     {},
	}

	files, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(2), files[0].Version)
	assert.Equal(t, uint(10), files[1].Version)
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add print jobs", "Stores rendered exports")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_print_jobs.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Stores rendered exports")
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "index status", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_index_status.down.sql"), second.DownPath)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestSource_ReadsEmbeddedSQL(t *testing.T) {
	src, err := Source(nil)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, identifier, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_print_jobs", identifier)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS print_jobs")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	defer down.Close()
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS print_jobs")
}

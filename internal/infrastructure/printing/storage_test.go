package printing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*FileSystemStorage, string) {
	t.Helper()
	base := t.TempDir()
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base, BaseURL: "/files/"})
	require.NoError(t, err)
	return s, base
}

func TestStoreRequest_ObjectKey(t *testing.T) {
	tenant := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	job := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	req := &StoreRequest{TenantID: tenant, JobID: job, PDFData: []byte("%PDF")}

	key := req.ObjectKey(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001/2024/03/11111111-2222-3333-4444-555555555555.pdf", key)
}

func TestStoreRequest_Validate(t *testing.T) {
	var nilReq *StoreRequest
	assert.Error(t, nilReq.Validate())
	assert.Error(t, (&StoreRequest{JobID: uuid.New(), PDFData: []byte("x")}).Validate())
	assert.Error(t, (&StoreRequest{TenantID: uuid.New(), PDFData: []byte("x")}).Validate())
	assert.Error(t, (&StoreRequest{TenantID: uuid.New(), JobID: uuid.New()}).Validate())
	assert.NoError(t, (&StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: []byte("x")}).Validate())
}

func TestFileSystemStorage_StoreAndGet(t *testing.T) {
	s, base := newTestStorage(t)
	ctx := context.Background()
	data := []byte("%PDF-1.3 test document")

	result, err := s.Store(ctx, &StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: data})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.Equal(t, "/files/"+result.Path, result.URL)
	assert.FileExists(t, filepath.Join(base, filepath.FromSlash(result.Path)))

	rc, err := s.Get(ctx, result.Path)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileSystemStorage_RejectsEscapingPaths(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	for _, p := range []string{"../secret.pdf", "a/../../b.pdf", "/etc/passwd"} {
		_, err := s.Get(ctx, p)
		assertRenderCode(t, err, ErrCodeStorageFailed)
		assert.Error(t, s.Delete(ctx, p), p)
	}
}

func TestFileSystemStorage_GetMissing(t *testing.T) {
	s, _ := newTestStorage(t)
	_, err := s.Get(context.Background(), "tenant/2024/01/missing.pdf")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))
	assert.ErrorIs(t, err, ErrPDFNotFound)
}

func TestFileSystemStorage_Delete(t *testing.T) {
	s, base := newTestStorage(t)
	ctx := context.Background()

	result, err := s.Store(ctx, &StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: []byte("%PDF")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, result.Path))
	assert.NoFileExists(t, filepath.Join(base, filepath.FromSlash(result.Path)))
	assert.NoError(t, s.Delete(ctx, result.Path), "deleting twice is not an error")
}

func TestFileSystemStorage_CleanupOlderThan(t *testing.T) {
	s, base := newTestStorage(t)
	ctx := context.Background()

	old, err := s.Store(ctx, &StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: []byte("%PDF old")})
	require.NoError(t, err)
	fresh, err := s.Store(ctx, &StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: []byte("%PDF new")})
	require.NoError(t, err)

	oldPath := filepath.Join(base, filepath.FromSlash(old.Path))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	notes := filepath.Join(base, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(notes, past, past))

	deleted, err := s.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, filepath.Join(base, filepath.FromSlash(fresh.Path)))
	assert.FileExists(t, notes)
}

func TestFileSystemStorage_CancelledContext(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Store(ctx, &StoreRequest{TenantID: uuid.New(), JobID: uuid.New(), PDFData: []byte("%PDF")})
	assertRenderCode(t, err, ErrCodeStorageFailed)
}

func TestFileSystemStorage_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	s, err := NewFileSystemStorage(nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/print/files/a/b.pdf", s.GetURL("a/b.pdf"))
	assert.DirExists(t, filepath.Join(dir, "data", "invoices"))
}

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

func newTestHistoryService(repo domain.HistoryRepository, max int) *HistoryService {
	return NewHistoryService(repo, &domain.HistoryConfig{MaxEntries: max}, zap.NewNop())
}

func TestHistoryService_RecordSuccessPicksNewestFile(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.mp4")
	newer := filepath.Join(dir, "Fresh Song.mp3")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("newer"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.mp3.part"), []byte("p"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	repo := newMockHistoryRepo()
	svc := newTestHistoryService(repo, 50)

	record, err := svc.RecordSuccess(domain.NewDownloadRequest("https://example.test", dir, domain.ModeAudio), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, newer, record.FilePath)
	assert.Equal(t, "Fresh Song", record.Title)
	assert.Equal(t, int64(5), record.FileSize)
	assert.Equal(t, domain.ModeAudio, record.Mode)
}

func TestHistoryService_RecordSuccessWithoutOutput(t *testing.T) {
	repo := newMockHistoryRepo()
	svc := newTestHistoryService(repo, 50)

	record, err := svc.RecordSuccess(domain.NewDownloadRequest("https://example.test", t.TempDir(), domain.ModeVideo), time.Now())

	assert.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, repo.records)
}

func TestHistoryService_RecordSuccessAlreadyDownloaded(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Earlier Clip.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("clip"), 0644))
	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(existing, past, past))

	repo := newMockHistoryRepo()
	svc := newTestHistoryService(repo, 50)

	record, err := svc.RecordSuccess(domain.NewDownloadRequest("https://example.test", dir, domain.ModeVideo), time.Now())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, existing, record.FilePath)
	assert.Len(t, repo.records, 1)
}

func TestHistoryService_PrunesToMaxEntries(t *testing.T) {
	repo := newMockHistoryRepo()
	svc := newTestHistoryService(repo, 3)
	req := domain.NewDownloadRequest("https://example.test", "/tmp", domain.ModeVideo)

	for i := 0; i < 5; i++ {
		record, err := svc.RecordFailure(req, "boom")
		require.NoError(t, err)
		record.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := svc.List(0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestHistoryService_DeleteWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	repo := newMockHistoryRepo()
	svc := newTestHistoryService(repo, 50)
	record, err := svc.RecordSuccess(domain.NewDownloadRequest("https://example.test", dir, domain.ModeVideo), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(record.ID, true))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = svc.Get(record.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestHistoryService_DeleteKeepsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	svc := newTestHistoryService(newMockHistoryRepo(), 50)
	record, err := svc.RecordSuccess(domain.NewDownloadRequest("https://example.test", dir, domain.ModeVideo), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(record.ID, false))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestHistoryService_DeleteUnknown(t *testing.T) {
	svc := newTestHistoryService(newMockHistoryRepo(), 50)
	assert.ErrorIs(t, svc.Delete("missing", true), domain.ErrRecordNotFound)
}

func TestNewestFile_SkipsOlderThanSince(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	_, _, err := NewestFile(dir, time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = NewestFile(filepath.Join(dir, "missing"), time.Time{})
	assert.Error(t, err)
}

func TestIsPartialFile(t *testing.T) {
	assert.True(t, isPartialFile("clip.mp4.part"))
	assert.True(t, isPartialFile("clip.f137.mp4.ytdl"))
	assert.True(t, isPartialFile("clip.mp4.part-Frag3"))
	assert.True(t, isPartialFile(".DS_Store"))
	assert.False(t, isPartialFile("clip.mp4"))
}

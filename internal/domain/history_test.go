package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDownloadRecord(t *testing.T) {
	req := NewDownloadRequest("https://example.test/watch?v=abc", "/tmp/out", ModeAudio)

	record := NewDownloadRecord(req)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, req.URL, record.URL)
	assert.Equal(t, ModeAudio, record.Mode)
	assert.Equal(t, RecordSuccess, record.Status)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestDownloadRecord_MarkSaved(t *testing.T) {
	record := NewDownloadRecord(NewDownloadRequest("https://example.test", "/tmp", ModeVideo))

	record.MarkSaved("/tmp/out/My Clip.mp4", 2048)

	assert.Equal(t, "/tmp/out/My Clip.mp4", record.FilePath)
	assert.Equal(t, "My Clip.mp4", record.Filename)
	assert.Equal(t, "My Clip", record.Title)
	assert.Equal(t, int64(2048), record.FileSize)
}

func TestDownloadRecord_MarkFailed(t *testing.T) {
	record := NewDownloadRecord(NewDownloadRequest("https://example.test", "/tmp", ModeVideo))

	record.MarkFailed("Network error: boom")

	assert.Equal(t, RecordFailed, record.Status)
	assert.Equal(t, "Network error: boom", record.ErrorMessage)
}

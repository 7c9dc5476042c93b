package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordStatus is the final status of a recorded attempt
type RecordStatus string

const (
	RecordSuccess RecordStatus = "success"
	RecordFailed  RecordStatus = "failed"
)

// DownloadRecord is one entry of the download history
type DownloadRecord struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	URL          string       `json:"url" gorm:"not null"`
	Title        string       `json:"title"`
	Filename     string       `json:"filename"`
	FilePath     string       `json:"filepath"`
	Mode         Mode         `json:"mode" gorm:"not null"`
	FileSize     int64        `json:"file_size"`
	Status       RecordStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"timestamp" gorm:"index"`
}

// NewDownloadRecord creates a history record for a request
func NewDownloadRecord(req DownloadRequest) *DownloadRecord {
	return &DownloadRecord{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Mode:      req.Mode,
		Status:    RecordSuccess,
		CreatedAt: time.Now(),
	}
}

// MarkSaved fills in the output file of a successful attempt
func (r *DownloadRecord) MarkSaved(path string, size int64) {
	r.Status = RecordSuccess
	r.FilePath = path
	r.Filename = filepath.Base(path)
	r.Title = strings.TrimSuffix(r.Filename, filepath.Ext(r.Filename))
	r.FileSize = size
}

// MarkFailed marks the record as failed
func (r *DownloadRecord) MarkFailed(message string) {
	r.Status = RecordFailed
	r.ErrorMessage = message
}

// HistoryRepository defines the interface for history persistence
type HistoryRepository interface {
	// Create stores a new record
	Create(record *DownloadRecord) error

	// FindByID finds a record by ID
	FindByID(id string) (*DownloadRecord, error)

	// FindRecent returns up to limit records, newest first. limit <= 0 returns all.
	FindRecent(limit int) ([]*DownloadRecord, error)

	// Delete deletes a record by ID
	Delete(id string) error

	// Prune keeps the newest keep records and deletes the rest
	Prune(keep int) (int64, error)

	// Count returns the number of records
	Count() (int64, error)
}

package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// HistoryService records finished attempts and keeps the history capped
type HistoryService struct {
	repo   domain.HistoryRepository
	config *domain.HistoryConfig
	logger *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(repo domain.HistoryRepository, config *domain.HistoryConfig, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

// RecordSuccess records the newest file written to the request's folder since
// the attempt started, or the newest file overall when the engine wrote nothing
// new (the media was already downloaded). It returns nil, nil for an empty folder.
func (s *HistoryService) RecordSuccess(req domain.DownloadRequest, since time.Time) (*domain.DownloadRecord, error) {
	path, info, err := NewestFile(req.SaveDir, since)
	if errors.Is(err, os.ErrNotExist) {
		path, info, err = NewestFile(req.SaveDir, time.Time{})
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("No output file found for history", zap.String("save_dir", req.SaveDir))
			return nil, nil
		}
		return nil, err
	}

	record := domain.NewDownloadRecord(req)
	record.MarkSaved(path, info.Size())
	if err := s.store(record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecordFailure records a failed attempt
func (s *HistoryService) RecordFailure(req domain.DownloadRequest, message string) (*domain.DownloadRecord, error) {
	record := domain.NewDownloadRecord(req)
	record.MarkFailed(message)
	if err := s.store(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *HistoryService) store(record *domain.DownloadRecord) error {
	if err := s.repo.Create(record); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}

	if s.config.MaxEntries > 0 {
		pruned, err := s.repo.Prune(s.config.MaxEntries)
		if err != nil {
			s.logger.Warn("Failed to prune history", zap.Error(err))
		} else if pruned > 0 {
			s.logger.Debug("Pruned history", zap.Int64("removed", pruned))
		}
	}

	s.logger.Info("History record saved",
		zap.String("id", record.ID),
		zap.String("status", string(record.Status)),
		zap.String("file", record.FilePath))
	return nil
}

// List returns up to limit records, newest first. limit <= 0 uses the configured cap.
func (s *HistoryService) List(limit int) ([]*domain.DownloadRecord, error) {
	if limit <= 0 {
		limit = s.config.MaxEntries
	}
	return s.repo.FindRecent(limit)
}

// Get returns a record by ID
func (s *HistoryService) Get(id string) (*domain.DownloadRecord, error) {
	return s.repo.FindByID(id)
}

// Delete removes a record. With deleteFile the downloaded file is removed too;
// an already missing file is not an error.
func (s *HistoryService) Delete(id string, deleteFile bool) error {
	record, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	if deleteFile && record.FilePath != "" {
		if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", record.FilePath, err)
		}
		s.logger.Info("Deleted downloaded file", zap.String("file", record.FilePath))
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	return nil
}

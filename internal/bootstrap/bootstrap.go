// Package bootstrap wires the download pipeline from configuration.
// Both the server and the CLI's local mode build on it.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/internal/infrastructure"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

// Services is a wired pipeline. The presenter is created but not started.
type Services struct {
	Config      *domain.Config
	Engine      *infrastructure.YtDlpEngine
	Helpers     *infrastructure.HelperLocator
	Repository  *infrastructure.SQLiteHistoryRepository
	History     *app.HistoryService
	Channel     *app.EventChannel
	Session     *app.Session
	Presenter   *app.Presenter
	MultiLogger *logger.MultiLogger
	Logger      *zap.Logger
}

// Options select the optional parts of the pipeline
type Options struct {
	// WithHistory opens the history database
	WithHistory bool
	// WithNotifications sends desktop notifications when enabled in config
	WithNotifications bool
}

// Build wires the pipeline. Cancelling ctx cancels the running attempt.
// multiLogger may be nil.
func Build(ctx context.Context, config *domain.Config, opts Options, multiLogger *logger.MultiLogger, log *zap.Logger) (*Services, error) {
	s := &Services{
		Config:      config,
		MultiLogger: multiLogger,
		Logger:      log,
	}

	if opts.WithHistory {
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		s.Repository = repo
		s.History = app.NewHistoryService(repo, &config.History, log)
	}

	s.Engine = infrastructure.NewYtDlpEngine(&config.Engine, config.Download.LogsDir, multiLogger, log)
	s.Helpers = infrastructure.NewHelperLocator(config.Engine.FFmpegDir)

	// interface values stay nil when the feature is off
	var tagger app.AudioTagger
	if config.Audio.WriteTags {
		tagger = infrastructure.NewMp3Tagger()
	}
	var notifier app.Notifier
	if opts.WithNotifications && config.Notification.Enabled {
		notifier = infrastructure.NewNotificationService(&config.Notification, log)
	}

	s.Channel = app.NewEventChannel()
	orchestrator := app.NewOrchestrator(s.Engine, s.Helpers, tagger, s.Channel, multiLogger, log)
	s.Session = app.NewSession(ctx, orchestrator, s.Channel, log)
	s.Presenter = app.NewPresenter(s.Session, s.History, notifier, &config.Presentation, multiLogger, log)

	log.Debug("Pipeline wired",
		zap.String("engine", config.Engine.YTDLPBinary),
		zap.String("helper_dir", s.Helpers.Dir()),
		zap.Bool("history", s.History != nil),
		zap.Bool("tags", tagger != nil),
		zap.Bool("notifications", notifier != nil))

	return s, nil
}

// Close releases the history database
func (s *Services) Close() error {
	if s.Repository != nil {
		return s.Repository.Close()
	}
	return nil
}

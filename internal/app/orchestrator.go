package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

// HelperResolver locates the transcoder helper directory
type HelperResolver interface {
	// Locate returns the directory holding the helpers, or "" when they are on PATH.
	// The error wraps domain.ErrHelperMissing and names the missing binary.
	Locate() (string, error)
}

// AudioTagger writes metadata into a finished audio file
type AudioTagger interface {
	Tag(path string, req domain.DownloadRequest) error
}

// Orchestrator executes one download request at a time and reports it
// on the event channel as (log|progress)* done.
type Orchestrator struct {
	engine      domain.Engine
	helpers     HelperResolver
	tagger      AudioTagger
	channel     *EventChannel
	multiLogger *logger.MultiLogger
	logger      *zap.Logger
}

// NewOrchestrator creates a new orchestrator. tagger and multiLogger may be nil.
func NewOrchestrator(
	engine domain.Engine,
	helpers HelperResolver,
	tagger AudioTagger,
	channel *EventChannel,
	multiLogger *logger.MultiLogger,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:      engine,
		helpers:     helpers,
		tagger:      tagger,
		channel:     channel,
		multiLogger: multiLogger,
		logger:      logger,
	}
}

// Run executes req to completion on the calling goroutine.
// Exactly one done event is published, always last. The returned error is
// the attempt failure, already reported on the channel.
func (o *Orchestrator) Run(ctx context.Context, req domain.DownloadRequest) (err error) {
	started := time.Now()
	hooks := &attemptHooks{normalizer: NewNormalizer(), channel: o.channel}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrUnexpected, r)
			o.logger.Error("Attempt panicked", zap.String("url", req.URL), zap.Any("panic", r), zap.Stack("stack"))
			hooks.finish(err)
		}
	}()

	o.logAttempt("attempt_started",
		zap.String("url", req.URL),
		zap.String("save_dir", req.SaveDir),
		zap.String("mode", string(req.Mode)))

	err = o.attempt(ctx, req, hooks)
	if err == nil {
		o.tagAudio(req, started, hooks)
		hooks.publish(domain.NewLogEvent("Finished!"))
	} else {
		hooks.publish(domain.NewLogEvent("Error: " + err.Error()))
	}
	hooks.finish(err)

	fields := []zap.Field{
		zap.String("url", req.URL),
		zap.Bool("ok", err == nil),
		zap.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		o.logger.Warn("Download failed", fields...)
		if !errors.Is(err, domain.ErrInvalidRequest) && o.multiLogger != nil {
			o.multiLogger.LogAppError("attempt_failed", fields...)
		}
	} else {
		o.logger.Info("Download finished", fields...)
	}
	o.logAttempt("attempt_finished", fields...)

	return err
}

// attempt runs everything up to and including the engine. Panics become errors.
func (o *Orchestrator) attempt(ctx context.Context, req domain.DownloadRequest, hooks *attemptHooks) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrUnexpected, r)
		}
	}()

	hooks.publish(domain.NewLogEvent("Starting download..."))
	if domain.ValidateMode(req.Mode) {
		hooks.publish(domain.NewLogEvent("Mode: " + req.Mode.Label()))
	}

	if err := req.Validate(); err != nil {
		return err
	}

	var ffmpegDir string
	if req.Mode == domain.ModeAudio {
		dir, err := o.helpers.Locate()
		if err != nil {
			return err
		}
		ffmpegDir = dir
	} else if dir, err := o.helpers.Locate(); err == nil {
		// merging works without an explicit location when the helper is on PATH
		ffmpegDir = dir
	}

	if err := ensureSaveDir(req.SaveDir); err != nil {
		return err
	}

	config := BuildEngineConfig(req, ffmpegDir)
	o.logger.Debug("Invoking engine",
		zap.String("url", req.URL),
		zap.String("format", config.Format),
		zap.String("output", config.OutputTemplate))

	return o.engine.Run(ctx, req.URL, config, hooks)
}

// tagAudio writes tags into the produced MP3. Failures, panics included, are
// reported as a warning only.
func (o *Orchestrator) tagAudio(req domain.DownloadRequest, since time.Time, hooks *attemptHooks) {
	if o.tagger == nil || req.Mode != domain.ModeAudio {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Audio tagger panicked", zap.Any("panic", r))
			hooks.publish(domain.NewLogEvent(fmt.Sprintf("Warning: could not write tags: %v", r)))
		}
	}()
	path, _, err := NewestFile(req.SaveDir, since)
	if err != nil || !strings.EqualFold(filepath.Ext(path), "."+AudioCodec) {
		return
	}
	if err := o.tagger.Tag(path, req); err != nil {
		o.logger.Warn("Failed to tag audio file", zap.String("file", path), zap.Error(err))
		hooks.publish(domain.NewLogEvent("Warning: could not write tags: " + err.Error()))
	}
}

func (o *Orchestrator) logAttempt(event string, fields ...zap.Field) {
	if o.multiLogger != nil {
		o.multiLogger.LogAttemptEvent(event, fields...)
	}
}

func ensureSaveDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a folder", domain.ErrSaveDirMissing, dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access save folder %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrSaveDirMissing, dir, err)
	}
	return nil
}

// attemptHooks bridges engine callbacks onto the channel for one attempt.
// After finish nothing more is published, so done is always last.
type attemptHooks struct {
	mu         sync.Mutex
	normalizer *Normalizer
	channel    *EventChannel
	closed     bool
}

func (h *attemptHooks) OnProgress(raw domain.RawProgress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if ev, ok := h.normalizer.Normalize(raw); ok {
		h.channel.Publish(ev)
	}
}

func (h *attemptHooks) OnLog(level domain.LogLevel, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	switch level {
	case domain.LogDebug:
		return
	case domain.LogWarning:
		message = "Warning: " + message
	case domain.LogError:
		message = "Error: " + message
	}
	h.publish(domain.NewLogEvent(message))
}

func (h *attemptHooks) publish(ev domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.channel.Publish(ev)
	}
}

func (h *attemptHooks) finish(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if err != nil {
		h.channel.Publish(domain.NewDoneEvent(false, domain.ClassifyError(err)))
		return
	}
	h.channel.Publish(domain.NewDoneEvent(true, ""))
}

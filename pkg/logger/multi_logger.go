package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryAttempt LogCategory = "attempt" // Attempt lifecycle events (JSON)
	CategoryError   LogCategory = "error"   // Application errors (JSON)
	CategoryEngine  LogCategory = "engine"  // Raw engine output (text), written by the engine
)

// Categories lists every category written by MultiLogger
var Categories = []LogCategory{CategoryAttempt, CategoryError}

// MultiLogger provides categorized logging with one file per category and day.
// Raw engine output is written by the engine itself, not through this logger.
type MultiLogger struct {
	config      MultiLoggerConfig
	level       zapcore.Level
	mu          sync.RWMutex
	loggers     map[LogCategory]*zap.Logger
	files       []*os.File
	currentDate string
	now         func() time.Time
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}
	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml := &MultiLogger{
		config: config,
		level:  level,
		now:    time.Now,
	}
	if err := ml.open(ml.now().Format("20060102")); err != nil {
		return nil, err
	}
	return ml, nil
}

// open creates the category loggers for date, closing the previous day's files
func (ml *MultiLogger) open(date string) error {
	loggers := make(map[LogCategory]*zap.Logger, len(Categories))
	var files []*os.File

	for _, category := range Categories {
		level := ml.level
		if category == CategoryError {
			level = zapcore.ErrorLevel
		}
		logger, file, err := ml.createStructuredLogger(category, date, level)
		if err != nil {
			for _, f := range files {
				f.Close()
			}
			return fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		loggers[category] = logger
		files = append(files, file)
	}

	for _, logger := range ml.loggers {
		_ = logger.Sync()
	}
	for _, f := range ml.files {
		f.Close()
	}

	ml.loggers = loggers
	ml.files = files
	ml.currentDate = date
	return nil
}

func (ml *MultiLogger) createStructuredLogger(category LogCategory, date string, level zapcore.Level) (*zap.Logger, *os.File, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""

	path := filepath.Join(ml.config.LogsDir, LogFileName(category, date))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level)
	return zap.New(core).With(zap.String("category", string(category))), file, nil
}

// LogFileName returns the file name of a category log for a YYYYMMDD date
func LogFileName(category LogCategory, date string) string {
	return fmt.Sprintf("%s-%s.log", category, date)
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the logger for a category, rolling files over at midnight
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	today := ml.now().Format("20060102")

	ml.mu.RLock()
	stale := today != ml.currentDate
	ml.mu.RUnlock()

	if stale {
		ml.mu.Lock()
		if today != ml.currentDate {
			// keep writing to yesterday's files if the new ones cannot be opened
			_ = ml.open(today)
		}
		ml.mu.Unlock()
	}

	ml.mu.RLock()
	defer ml.mu.RUnlock()
	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// Attempt returns the attempt lifecycle logger
func (ml *MultiLogger) Attempt() *zap.Logger {
	return ml.GetLogger(CategoryAttempt)
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAttemptEvent logs an attempt lifecycle event with structured data
func (ml *MultiLogger) LogAttemptEvent(event string, fields ...zap.Field) {
	ml.Attempt().Info(event, fields...)
}

// LogAppError logs an application-level error (Go errors, recovered panics)
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	ml.files = nil
	return lastErr
}

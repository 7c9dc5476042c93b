package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

const (
	downloadMarker    = "[ytfile:download] "
	postprocessMarker = "[ytfile:postprocess] "

	// field order of the download progress template; filename is last because it may contain '|'
	downloadTemplate = "download:" + downloadMarker +
		"%(progress.status)s|%(progress.downloaded_bytes)s|%(progress.total_bytes)s|" +
		"%(progress.total_bytes_estimate)s|%(progress.speed)s|%(progress.eta)s|%(progress.filename)s"
	postprocessTemplate = "postprocess:" + postprocessMarker +
		"%(progress.status)s|%(progress.postprocessor)s"
)

var downloadFields = []string{"status", "downloaded_bytes", "total_bytes", "total_bytes_estimate", "speed", "eta", "filename"}

// YtDlpEngine runs the yt-dlp binary as the download engine
type YtDlpEngine struct {
	binary      string
	logsDir     string
	eventLogger *logger.MultiLogger // structured events only; raw output goes to the engine log file
	logger      *zap.Logger
	lookPath    func(string) (string, error)
}

// NewYtDlpEngine creates a new yt-dlp engine. logsDir may be empty to skip the raw output log.
func NewYtDlpEngine(settings *domain.EngineSettings, logsDir string, eventLogger *logger.MultiLogger, logger *zap.Logger) *YtDlpEngine {
	return &YtDlpEngine{
		binary:      settings.YTDLPBinary,
		logsDir:     logsDir,
		eventLogger: eventLogger,
		logger:      logger,
		lookPath:    exec.LookPath,
	}
}

// BuildArgs translates an engine configuration into yt-dlp arguments
func BuildArgs(url string, config *domain.EngineConfig) []string {
	args := []string{
		"--newline",
		"--no-mtime",
		"-f", config.Format,
		"-o", config.OutputTemplate,
	}

	if config.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", config.MergeOutputFormat)
	}

	for _, pp := range config.PostProcessors {
		if pp.Key != "FFmpegExtractAudio" {
			continue
		}
		args = append(args, "-x")
		if pp.PreferredCodec != "" {
			args = append(args, "--audio-format", pp.PreferredCodec)
		}
		if pp.PreferredQuality != "" {
			args = append(args, "--audio-quality", audioQuality(pp.PreferredQuality))
		}
	}

	if config.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", config.FFmpegLocation)
	}
	if config.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	if config.Quiet {
		// keep the progress lines even when quiet
		args = append(args, "--quiet", "--progress")
	}
	if config.NoWarnings {
		args = append(args, "--no-warnings")
	}

	args = append(args,
		"--progress-template", downloadTemplate,
		"--progress-template", postprocessTemplate,
		"--", url,
	)
	return args
}

// audioQuality turns a bare bitrate such as "192" into yt-dlp's "192K".
// Values 0-9 are VBR levels and pass through unchanged.
func audioQuality(q string) string {
	if n, err := strconv.Atoi(q); err == nil && n > 9 {
		return q + "K"
	}
	return q
}

// Run executes yt-dlp and blocks until it exits. Hooks are called from the
// stdout and stderr reader goroutines, never after Run returns.
func (e *YtDlpEngine) Run(ctx context.Context, url string, config *domain.EngineConfig, hooks domain.EngineHooks) error {
	binary, err := e.lookPath(e.binary)
	if err != nil {
		return fmt.Errorf("%w: %s is not installed or not on PATH", domain.ErrEngineMissing, e.binary)
	}

	args := BuildArgs(url, config)

	rawLog, closeLog := e.openLogFile()
	defer closeLog()
	e.writeLogHeader(rawLog, url, ShellEscapeCommand(binary, args...))

	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open yt-dlp stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open yt-dlp stderr: %w", err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		e.writeLogFooter(rawLog, false, err.Error())
		return fmt.Errorf("%w: failed to start %s: %v", domain.ErrEngineFailed, e.binary, err)
	}

	var (
		errMu     sync.Mutex
		lastError string
	)
	var g errgroup.Group
	g.Go(func() error {
		return scanLines(stdout, rawLog, func(line string) {
			dispatchLine(line, domain.LogInfo, hooks)
		})
	})
	g.Go(func() error {
		return scanLines(stderr, rawLog, func(line string) {
			level := dispatchLine(line, domain.LogWarning, hooks)
			if level == domain.LogError {
				errMu.Lock()
				lastError = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
				errMu.Unlock()
			}
		})
	})

	readErr := g.Wait()
	waitErr := cmd.Wait()

	fields := []zap.Field{
		zap.String("url", url),
		zap.Duration("elapsed", time.Since(started)),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.writeLogFooter(rawLog, false, "interrupted: "+ctxErr.Error())
		e.logEvent("engine_interrupted", fields...)
		return fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
	}

	if waitErr != nil {
		errMu.Lock()
		msg := lastError
		errMu.Unlock()
		if msg == "" {
			msg = waitErr.Error()
		}
		e.writeLogFooter(rawLog, false, msg)
		e.logEvent("engine_failed", append(fields, zap.String("error", msg))...)
		return fmt.Errorf("%w: %s", domain.ErrEngineFailed, msg)
	}

	if readErr != nil {
		e.writeLogFooter(rawLog, false, readErr.Error())
		return fmt.Errorf("failed to read yt-dlp output: %w", readErr)
	}

	e.writeLogFooter(rawLog, true, "exit 0")
	e.logEvent("engine_finished", fields...)
	return nil
}

// FetchInfo looks up video metadata without downloading
func (e *YtDlpEngine) FetchInfo(ctx context.Context, url string) (*domain.VideoInfo, error) {
	binary, err := e.lookPath(e.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not installed or not on PATH", domain.ErrEngineMissing, e.binary)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", "--", url)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		msg := lastErrorLine(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrEngineFailed, msg)
	}

	return ParseVideoInfo(stdout.Bytes())
}

// ParseVideoInfo decodes the fields of a yt-dlp info JSON document that a preview needs
func ParseVideoInfo(data []byte) (*domain.VideoInfo, error) {
	var raw struct {
		Title     string   `json:"title"`
		Channel   string   `json:"channel"`
		Uploader  string   `json:"uploader"`
		Duration  *float64 `json:"duration"`
		Thumbnail string   `json:"thumbnail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse video info: %w", err)
	}

	info := &domain.VideoInfo{
		Title:        raw.Title,
		Channel:      raw.Channel,
		ThumbnailURL: raw.Thumbnail,
	}
	if info.Channel == "" {
		info.Channel = raw.Uploader
	}
	if raw.Duration != nil && *raw.Duration > 0 {
		info.Duration = int(*raw.Duration)
	}
	return info, nil
}

// dispatchLine routes one output line to the hooks and returns the level it was logged at
func dispatchLine(line string, defaultLevel domain.LogLevel, hooks domain.EngineHooks) domain.LogLevel {
	switch {
	case strings.HasPrefix(line, downloadMarker):
		hooks.OnProgress(parseTemplateLine(strings.TrimPrefix(line, downloadMarker), downloadFields))
		return ""
	case strings.HasPrefix(line, postprocessMarker):
		hooks.OnProgress(parseTemplateLine(strings.TrimPrefix(line, postprocessMarker), []string{"status", "postprocessor"}))
		return ""
	}

	level := classifyLine(line, defaultLevel)
	msg := line
	switch level {
	case domain.LogError:
		msg = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
	case domain.LogWarning:
		msg = strings.TrimSpace(strings.TrimPrefix(line, "WARNING:"))
	}
	hooks.OnLog(level, msg)
	return level
}

func classifyLine(line string, defaultLevel domain.LogLevel) domain.LogLevel {
	switch {
	case strings.HasPrefix(line, "ERROR:"):
		return domain.LogError
	case strings.HasPrefix(line, "WARNING:"):
		return domain.LogWarning
	case strings.HasPrefix(line, "[debug]"):
		return domain.LogDebug
	case strings.HasPrefix(line, "["):
		// "[youtube] abc: Downloading webpage" style status lines
		return domain.LogInfo
	default:
		return defaultLevel
	}
}

// parseTemplateLine splits a '|' separated progress line into a raw record.
// Numeric text becomes float64; anything else, including yt-dlp's "NA", stays text.
func parseTemplateLine(payload string, fields []string) domain.RawProgress {
	parts := strings.SplitN(payload, "|", len(fields))
	raw := make(domain.RawProgress, len(parts))
	for i, part := range parts {
		key := fields[i]
		if key == "status" || key == "filename" || key == "postprocessor" {
			raw[key] = part
			continue
		}
		if f, err := strconv.ParseFloat(part, 64); err == nil {
			raw[key] = f
		} else {
			raw[key] = part
		}
	}
	return raw
}

// maxLineBytes caps a single output line; the rest of a longer line is discarded
const maxLineBytes = 1024 * 1024

// scanLines reads r to EOF. The pipe is always drained so the engine never
// blocks on a full pipe.
func scanLines(r io.Reader, rawLog io.Writer, handle func(string)) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := readLine(reader, maxLineBytes)
		if err == nil || line != "" {
			line = strings.TrimRight(line, "\r")
			fmt.Fprintln(rawLog, line)
			if strings.TrimSpace(line) != "" {
				handle(line)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// readLine returns the next line without its terminator, truncated to limit bytes
func readLine(r *bufio.Reader, limit int) (string, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return string(buf), err
		}
		if room := limit - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			buf = append(buf, chunk...)
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

func lastErrorLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return ""
}

func (e *YtDlpEngine) logEvent(event string, fields ...zap.Field) {
	if e.eventLogger != nil {
		e.eventLogger.LogAttemptEvent(event, fields...)
	}
}

// openLogFile opens today's raw engine log. stdout and stderr share it,
// so writes go through a lock.
func (e *YtDlpEngine) openLogFile() (io.Writer, func()) {
	if e.logsDir == "" {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		e.logger.Warn("Failed to create logs directory", zap.Error(err))
		return io.Discard, func() {}
	}

	path := filepath.Join(e.logsDir, logger.LogFileName(logger.CategoryEngine, time.Now().Format("20060102")))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		e.logger.Warn("Failed to open engine log", zap.String("path", path), zap.Error(err))
		return io.Discard, func() {}
	}
	return &lockedWriter{w: file}, func() { file.Close() }
}

func (e *YtDlpEngine) writeLogHeader(w io.Writer, url, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Attempt: %s ===\n", timestamp, url)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

func (e *YtDlpEngine) writeLogFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n=== END ===\n\n", timestamp, status, message)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

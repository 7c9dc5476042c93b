package domain

import (
	"context"
	"fmt"
)

// RawProgress is an opaque progress record reported by the engine.
// Keys and value types are engine-defined and may change between engine versions.
type RawProgress map[string]any

// LogLevel is the severity of an engine log line
type LogLevel string

const (
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// EngineHooks receives callbacks while the engine runs.
// Implementations must return promptly; a blocking hook stalls the engine.
type EngineHooks interface {
	OnProgress(raw RawProgress)
	OnLog(level LogLevel, message string)
}

// PostProcessor is a post-processing directive for the engine
type PostProcessor struct {
	Key              string `json:"key"`
	PreferredCodec   string `json:"preferred_codec"`
	PreferredQuality string `json:"preferred_quality"`
}

// EngineConfig is the per-attempt configuration handed to the engine
type EngineConfig struct {
	OutputTemplate    string          `json:"output_template"`
	Format            string          `json:"format"`
	MergeOutputFormat string          `json:"merge_output_format,omitempty"`
	PostProcessors    []PostProcessor `json:"post_processors,omitempty"`
	FFmpegLocation    string          `json:"ffmpeg_location,omitempty"`
	NoPlaylist        bool            `json:"no_playlist"`
	Quiet             bool            `json:"quiet"`
	NoWarnings        bool            `json:"no_warnings"`
}

// Engine downloads and transcodes media for a single URL
type Engine interface {
	// Run blocks until the engine finishes. Hooks are invoked from within Run only.
	Run(ctx context.Context, url string, config *EngineConfig, hooks EngineHooks) error
}

// VideoInfo is the metadata shown before a download starts
type VideoInfo struct {
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Duration     int    `json:"duration"` // seconds
	ThumbnailURL string `json:"thumbnail_url"`
}

// DurationText renders the duration as m:ss or h:mm:ss
func (v VideoInfo) DurationText() string {
	secs := v.Duration
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// InfoFetcher looks up video metadata without downloading
type InfoFetcher interface {
	FetchInfo(ctx context.Context, url string) (*VideoInfo, error)
}

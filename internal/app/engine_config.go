package app

import (
	"path/filepath"

	"github.com/yourusername/ytfile-go/internal/domain"
)

const (
	// VideoFormat prefers MP4 video with M4A audio, falling back to the best single MP4, then anything
	VideoFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	// AudioFormat selects the best audio-only stream
	AudioFormat = "bestaudio/best"

	VideoContainer = "mp4"
	AudioCodec     = "mp3"
	AudioQuality   = "192"

	outputTemplate = "%(title)s.%(ext)s"
)

// BuildEngineConfig derives the engine configuration for a request.
// ffmpegDir is the resolved helper directory; empty leaves helper lookup to the engine.
func BuildEngineConfig(req domain.DownloadRequest, ffmpegDir string) *domain.EngineConfig {
	config := &domain.EngineConfig{
		OutputTemplate: filepath.Join(req.SaveDir, outputTemplate),
		FFmpegLocation: ffmpegDir,
		NoPlaylist:     true,
		Quiet:          false,
		NoWarnings:     true,
	}

	switch req.Mode {
	case domain.ModeAudio:
		config.Format = AudioFormat
		config.PostProcessors = []domain.PostProcessor{{
			Key:              "FFmpegExtractAudio",
			PreferredCodec:   AudioCodec,
			PreferredQuality: AudioQuality,
		}}
	default:
		config.Format = VideoFormat
		config.MergeOutputFormat = VideoContainer
	}

	return config
}

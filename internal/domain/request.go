package domain

import (
	"fmt"
	"strings"
)

// Mode represents the output mode of a download
type Mode string

const (
	ModeVideo Mode = "video" // Best video + audio, muxed to MP4
	ModeAudio Mode = "audio" // Best audio, extracted to MP3
)

// Label returns the human-readable mode name shown to users
func (m Mode) Label() string {
	switch m {
	case ModeAudio:
		return "Audio Only (MP3)"
	case ModeVideo:
		return "Best Video (MP4)"
	default:
		return string(m)
	}
}

// ParseMode maps user input onto a Mode.
// Accepts the canonical names, the container names and the display labels.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video", "mp4", "best video (mp4)", "mp4 video":
		return ModeVideo, nil
	case "audio", "mp3", "audio only (mp3)", "mp3 audio":
		return ModeAudio, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

// ValidateMode checks if a mode is valid
func ValidateMode(mode Mode) bool {
	return mode == ModeVideo || mode == ModeAudio
}

// DownloadRequest is a single user request. It is immutable once submitted.
type DownloadRequest struct {
	URL     string `json:"url"`
	SaveDir string `json:"save_dir"`
	Mode    Mode   `json:"mode"`
}

// NewDownloadRequest creates a request with trimmed fields
func NewDownloadRequest(url, saveDir string, mode Mode) DownloadRequest {
	return DownloadRequest{
		URL:     strings.TrimSpace(url),
		SaveDir: strings.TrimSpace(saveDir),
		Mode:    mode,
	}
}

// Validate checks the request fields that can be checked without touching the filesystem
func (r DownloadRequest) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("%w: please paste a video URL", ErrInvalidRequest)
	}
	if r.SaveDir == "" {
		return fmt.Errorf("%w: save folder not set", ErrInvalidRequest)
	}
	if !ValidateMode(r.Mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
	return nil
}

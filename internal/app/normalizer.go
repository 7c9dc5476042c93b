package app

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// Normalizer maps raw engine progress records onto progress events.
// One Normalizer serves exactly one attempt; it is not safe for concurrent use.
//
// The engine reports bytes per file, and an attempt may download several files
// (separate video and audio streams). Bytes of finished files are carried as an
// offset so DownloadedBytes never decreases across the attempt.
type Normalizer struct {
	offset    uint64 // bytes of files already finished
	fileBytes uint64 // high-water mark within the current file
	filename  string
}

// NewNormalizer creates a normalizer for a new attempt
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize maps one raw record onto at most one event.
// ok is false for records it does not recognize. It never panics.
func (n *Normalizer) Normalize(raw domain.RawProgress) (ev domain.Event, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ev = domain.NewLogEvent(fmt.Sprintf("Unreadable progress update from engine: %v", r))
			ok = true
		}
	}()

	if raw == nil {
		return domain.Event{}, false
	}

	status := stringField(raw, "status")
	if pp := stringField(raw, "postprocessor"); pp != "" {
		return postprocessEvent(status, pp)
	}

	switch status {
	case "downloading":
		return domain.NewProgressEvent(n.progress(raw)), true
	case "finished":
		name := n.finishFile(raw)
		if name == "" {
			return domain.NewLogEvent("Finalizing..."), true
		}
		return domain.NewLogEvent(fmt.Sprintf("Downloaded: %s. Finalizing...", name)), true
	case "error":
		name := filepath.Base(stringField(raw, "filename"))
		if name == "." || name == "" {
			return domain.NewLogEvent("Error: download of a stream failed"), true
		}
		return domain.NewLogEvent(fmt.Sprintf("Error: download of %s failed", name)), true
	default:
		return domain.Event{}, false
	}
}

func (n *Normalizer) progress(raw domain.RawProgress) domain.Progress {
	if name := stringField(raw, "filename"); name != "" {
		if n.filename != "" && name != n.filename {
			n.rollFile()
		}
		n.filename = name
	}

	if downloaded := numberField(raw, "downloaded_bytes"); downloaded != nil {
		if b := uint64(*downloaded); b > n.fileBytes {
			n.fileBytes = b
		}
	}

	p := domain.Progress{
		DownloadedBytes: n.offset + n.fileBytes,
		Speed:           numberField(raw, "speed"),
		ETA:             numberField(raw, "eta"),
	}

	total := numberField(raw, "total_bytes")
	if total == nil || *total == 0 {
		total = numberField(raw, "total_bytes_estimate")
	}
	if total != nil && *total > 0 {
		t := n.offset + uint64(*total)
		p.TotalBytes = &t
	}
	return p
}

// finishFile closes the current file and returns its base name
func (n *Normalizer) finishFile(raw domain.RawProgress) string {
	for _, key := range []string{"downloaded_bytes", "total_bytes"} {
		if v := numberField(raw, key); v != nil && uint64(*v) > n.fileBytes {
			n.fileBytes = uint64(*v)
		}
	}
	name := stringField(raw, "filename")
	if name == "" {
		name = n.filename
	}
	n.rollFile()
	if name == "" {
		return ""
	}
	return filepath.Base(name)
}

func (n *Normalizer) rollFile() {
	n.offset += n.fileBytes
	n.fileBytes = 0
	n.filename = ""
}

func postprocessEvent(status, postprocessor string) (domain.Event, bool) {
	name := strings.TrimPrefix(postprocessor, "FFmpeg")
	switch status {
	case "started":
		switch {
		case strings.Contains(name, "Merger"):
			return domain.NewLogEvent("Merging formats..."), true
		case strings.Contains(name, "ExtractAudio"):
			return domain.NewLogEvent("Converting audio..."), true
		default:
			return domain.NewLogEvent(fmt.Sprintf("Post-processing: %s...", name)), true
		}
	case "finished":
		return domain.NewLogEvent(fmt.Sprintf("Post-processing done: %s", name)), true
	default:
		return domain.Event{}, false
	}
}

func stringField(raw domain.RawProgress, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

// numberField returns nil for anything that is not a finite, non-negative number
func numberField(raw domain.RawProgress, key string) *float64 {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	return &f
}

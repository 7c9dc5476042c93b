package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// partial download suffixes left by the engine
var partialSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}

// NewestFile returns the most recently modified regular file in dir that was
// modified at or after since. Partial downloads and hidden files are skipped.
func NewestFile(dir string, since time.Time) (string, os.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	// filesystems may store coarser mtimes than the clock reports
	since = since.Truncate(time.Second)

	var (
		newestPath string
		newestInfo os.FileInfo
	)
	for _, entry := range entries {
		if entry.IsDir() || isPartialFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newestPath = filepath.Join(dir, entry.Name())
			newestInfo = info
		}
	}

	if newestInfo == nil {
		return "", nil, os.ErrNotExist
	}
	return newestPath, newestInfo, nil
}

func isPartialFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, ".part-frag")
}

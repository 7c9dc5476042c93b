package infrastructure

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// helperNames are the transcoder binaries the engine needs for merging and audio extraction
var helperNames = []string{"ffmpeg", "ffprobe"}

// HelperLocator finds the transcoder helpers, preferring the bundled directory over PATH
type HelperLocator struct {
	dir      string
	goos     string
	lookPath func(string) (string, error)
}

// NewHelperLocator creates a locator for the bundled directory dir.
// An empty dir means assets/ffmpeg next to the executable.
func NewHelperLocator(dir string) *HelperLocator {
	if dir == "" {
		dir = DefaultHelperDir()
	}
	return &HelperLocator{
		dir:      dir,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// DefaultHelperDir returns assets/ffmpeg next to the running executable
func DefaultHelperDir() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("assets", "ffmpeg")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "assets", "ffmpeg")
}

// Dir returns the bundled directory searched first
func (l *HelperLocator) Dir() string {
	return l.dir
}

// Locate returns the directory holding every helper binary, or "" when they
// are on PATH in different directories.
func (l *HelperLocator) Locate() (string, error) {
	if l.bundled() {
		return l.dir, nil
	}

	var (
		missing []string
		dirs    []string
	)
	for _, name := range helperNames {
		path, err := l.lookPath(l.binaryName(name))
		if err != nil {
			missing = append(missing, name)
			continue
		}
		dirs = append(dirs, filepath.Dir(path))
	}

	if len(missing) > 0 {
		verb := "was"
		if len(missing) > 1 {
			verb = "were"
		}
		return "", fmt.Errorf("%w: FFmpeg is required for MP3 conversion but %s %s not found. "+
			"Install FFmpeg (e.g. 'brew install ffmpeg' on macOS) or place the ffmpeg binaries in %s",
			domain.ErrHelperMissing, strings.Join(missing, " and "), verb, l.dir)
	}
	// a single location only when every helper lives there; otherwise the engine searches PATH
	for _, dir := range dirs[1:] {
		if dir != dirs[0] {
			return "", nil
		}
	}
	return dirs[0], nil
}

func (l *HelperLocator) bundled() bool {
	for _, name := range helperNames {
		info, err := os.Stat(filepath.Join(l.dir, l.binaryName(name)))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

func (l *HelperLocator) binaryName(name string) string {
	if l.goos == "windows" {
		return name + ".exe"
	}
	return name
}

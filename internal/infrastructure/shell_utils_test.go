package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "''"},
		{"plain flag", "--no-playlist", "--no-playlist"},
		{"plain path", "/tmp/out", "/tmp/out"},
		{"output template", "/tmp/out/%(title)s.%(ext)s", "'/tmp/out/%(title)s.%(ext)s'"},
		{"format selector", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best", "'bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best'"},
		{"url with query", "https://example.test/watch?v=abc&t=1", "'https://example.test/watch?v=abc&t=1'"},
		{"folder with spaces", "/Users/me/My Videos", "'/Users/me/My Videos'"},
		{"single quote", "/tmp/it's", `'/tmp/it'"'"'s'`},
		{"pipe in template", "download:[x] %(progress.status)s|%(progress.eta)s", "'download:[x] %(progress.status)s|%(progress.eta)s'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	got := ShellEscapeCommand("/usr/local/bin/yt-dlp", "-o", "/tmp/My Videos/%(title)s.%(ext)s", "--", "https://example.test/watch?v=abc")

	assert.Equal(t,
		"/usr/local/bin/yt-dlp -o '/tmp/My Videos/%(title)s.%(ext)s' -- 'https://example.test/watch?v=abc'",
		got)
}

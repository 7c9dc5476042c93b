package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfile-go/internal/domain"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
download:
  save_dir: /srv/media
engine:
  ytdlp_binary: /usr/local/bin/yt-dlp
presentation:
  poll_interval: 250ms
history:
  max_entries: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "/srv/media", config.Download.SaveDir)
	assert.Equal(t, "/usr/local/bin/yt-dlp", config.Engine.YTDLPBinary)
	assert.Equal(t, 250*time.Millisecond, config.Presentation.PollInterval)
	assert.Equal(t, 10, config.History.MaxEntries)
	assert.True(t, config.Audio.WriteTags)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0644))
	t.Setenv("YTFILE_SERVER_PORT", "9200")
	t.Setenv("YTFILE_DOWNLOAD_SAVE_DIR", "/env/media")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "/env/media", config.Download.SaveDir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid server port")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), expandPath("~/Downloads"))
	assert.Equal(t, home+"/.ytfile/history.db", expandPath("$HOME/.ytfile/history.db"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := domain.DefaultConfig()
	config.Server.Port = 9300
	config.Download.SaveDir = "/srv/out"
	config.Presentation.PollInterval = 200 * time.Millisecond

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9300, loaded.Server.Port)
	assert.Equal(t, "/srv/out", loaded.Download.SaveDir)
	assert.Equal(t, 200*time.Millisecond, loaded.Presentation.PollInterval)
}

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytfile", "config.yaml")

	require.NoError(t, writeDefaultConfig(path, false))
	assert.Error(t, writeDefaultConfig(path, false))
	require.NoError(t, writeDefaultConfig(path, true))

	config, err := app.LoadConfig(path)
	require.NoError(t, err)
	defaults := domain.DefaultConfig()
	assert.Equal(t, defaults.Server.Port, config.Server.Port)
	assert.Equal(t, defaults.Presentation.PollInterval, config.Presentation.PollInterval)
	assert.Equal(t, defaults.History.MaxEntries, config.History.MaxEntries)
}

package infrastructure

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

type recordedCommand struct {
	name string
	args []string
}

func newRecordingNotifier(method string, enabled bool) (*NotificationService, *[]recordedCommand) {
	var calls []recordedCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, zap.NewNop())
	n.command = func(name string, args ...string) *exec.Cmd {
		calls = append(calls, recordedCommand{name: name, args: args})
		return exec.Command("true")
	}
	return n, &calls
}

func TestNotification_Disabled(t *testing.T) {
	n, calls := newRecordingNotifier("notify-send", false)

	assert.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotification_NotifySend(t *testing.T) {
	n, calls := newRecordingNotifier("notify-send", true)

	n.NotifyDownloadCompleted(domain.NewDownloadRequest("https://example.test", "/tmp/out", domain.ModeVideo), "Clip.mp4")

	if assert.Len(t, *calls, 1) {
		assert.Equal(t, "notify-send", (*calls)[0].name)
		assert.Equal(t, []string{"Download complete", "Saved: Clip.mp4"}, (*calls)[0].args)
	}
}

func TestNotification_OSAScriptQuotes(t *testing.T) {
	n, calls := newRecordingNotifier("osascript", true)

	n.NotifyDownloadFailed(domain.NewDownloadRequest("https://example.test", "/tmp/out", domain.ModeAudio), `bad "quote"`)

	if assert.Len(t, *calls, 1) {
		assert.Equal(t, "osascript", (*calls)[0].name)
		assert.Contains(t, (*calls)[0].args[1], `\"quote\"`)
		assert.Contains(t, (*calls)[0].args[1], `with title "Download failed"`)
	}
}

func TestNotification_UnknownMethod(t *testing.T) {
	n, calls := newRecordingNotifier("carrier-pigeon", true)

	assert.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
	assert.Equal(t, "héé...", truncateString("hééllo", 3))
}

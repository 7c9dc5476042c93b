package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// NotificationService sends desktop notifications for finished attempts
type NotificationService struct {
	config  *domain.NotificationConfig
	logger  *zap.Logger
	command func(name string, args ...string) *exec.Cmd
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config:  config,
		logger:  logger,
		command: exec.Command,
	}
}

// Send sends a notification with the configured method
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var cmd *exec.Cmd
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		cmd = n.command("osascript", "-e", script)
	case "notify-send":
		cmd = n.command("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyDownloadCompleted sends a notification when an attempt succeeds
func (n *NotificationService) NotifyDownloadCompleted(req domain.DownloadRequest, filename string) {
	message := fmt.Sprintf("%s saved to %s", req.Mode.Label(), req.SaveDir)
	if filename != "" {
		message = fmt.Sprintf("Saved: %s", truncateString(filename, 60))
	}
	_ = n.Send("Download complete", message)
}

// NotifyDownloadFailed sends a notification when an attempt fails
func (n *NotificationService) NotifyDownloadFailed(req domain.DownloadRequest, errorMessage string) {
	message := fmt.Sprintf("%s: %s", truncateString(req.URL, 40), truncateString(errorMessage, 80))
	_ = n.Send("Download failed", message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates s to maxLen runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

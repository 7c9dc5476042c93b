package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o deadline reached" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"cancelled", fmt.Errorf("yt-dlp: %w", context.Canceled), "cancelled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"net timeout", timeoutError{}, "timeout"},
		{"engine timeout text", errors.New("ERROR: Read timed out."), "timeout"},
		{"unsupported", errors.New("ERROR: Unsupported URL: https://example.test"), "Unsupported URL"},
		{"helper", fmt.Errorf("%w: ffmpeg", ErrHelperMissing), "ffmpeg"},
		{"disk", fmt.Errorf("write: %w", os.ErrPermission), "Disk write failed"},
		{"network", errors.New("ERROR: Unable to download webpage"), "Network error"},
		{"other", errors.New("something odd"), "something odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if tt.contains == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.contains)
		})
	}
}

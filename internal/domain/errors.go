package domain

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"strings"
)

var (
	ErrInvalidRequest = errors.New("invalid download request")
	ErrSaveDirMissing = errors.New("save folder does not exist")
	ErrHelperMissing  = errors.New("transcoder helper not found")
	ErrEngineMissing  = errors.New("download engine not found")
	ErrEngineFailed   = errors.New("download engine failed")
	ErrUnexpected     = errors.New("unexpected failure")
	ErrRecordNotFound = errors.New("history record not found")
)

// ClassifyError turns an attempt failure into a single human-readable message
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "Download cancelled"
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrHelperMissing),
		errors.Is(err, ErrEngineMissing),
		errors.Is(err, ErrSaveDirMissing):
		return msg
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"):
		return "Network timeout: " + msg
	case strings.Contains(lower, "unsupported url"):
		return "Unsupported URL: " + msg
	case errors.Is(err, fs.ErrPermission),
		strings.Contains(lower, "no space left"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "unable to write"):
		return "Disk write failed: " + msg
	case errors.As(err, &netErr),
		strings.Contains(lower, "unable to download"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "http error"),
		strings.Contains(lower, "name resolution"),
		strings.Contains(lower, "getaddrinfo"):
		return "Network error: " + msg
	default:
		return msg
	}
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ytfile-go/internal/domain"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "—"},
		{-5, "—"},
		{512, "512 B"},
		{1536, "1.50 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
		{5 * 1024 * 1024 * 1024 * 1024 * 1024, "5120.00 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "—", FormatETA(-1))
	assert.Equal(t, "0:00", FormatETA(0))
	assert.Equal(t, "1:05", FormatETA(65.9))
	assert.Equal(t, "1:01:01", FormatETA(3661))
}

func TestFormatStatusLine(t *testing.T) {
	total := uint64(3 * 1024 * 1024)
	speed := 1024.0 * 1024
	eta := 2.0

	line := FormatStatusLine(domain.Progress{
		DownloadedBytes: 1258291,
		TotalBytes:      &total,
		Speed:           &speed,
		ETA:             &eta,
	})
	assert.Equal(t, " 40%  1.20 MB / 3.00 MB    1.00 MB/s  •  ETA 0:02", line)

	assert.Equal(t, "2.00 KB", FormatStatusLine(domain.Progress{DownloadedBytes: 2048}))
	assert.Equal(t, "—    ETA 0:10", FormatStatusLine(domain.Progress{ETA: ptrFloat(10)}))
}

func ptrFloat(v float64) *float64 { return &v }

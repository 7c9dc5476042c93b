package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/ytfile-go/internal/domain"
)

const unknownValue = "—"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with binary units, e.g. "1.50 MB"
func FormatBytes(n float64) string {
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return unknownValue
	}
	i := 0
	for n >= 1024 && i < len(byteUnits)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", int64(n), byteUnits[i])
	}
	return fmt.Sprintf("%.2f %s", n, byteUnits[i])
}

// FormatETA renders seconds as m:ss or h:mm:ss
func FormatETA(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return unknownValue
	}
	s := int64(seconds)
	h, m := s/3600, (s%3600)/60
	s %= 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatStatusLine renders a progress reading as a single status line, e.g.
// " 42%  1.20 MB / 3.00 MB    1.00 MB/s  •  ETA 0:02".
// The percentage is shown only when the total is known.
func FormatStatusLine(p domain.Progress) string {
	var left string
	if fraction, ok := p.Fraction(); ok {
		left = fmt.Sprintf("%3d%%  %s / %s",
			int(math.Round(fraction*100)),
			FormatBytes(float64(p.DownloadedBytes)),
			FormatBytes(float64(*p.TotalBytes)))
	} else {
		left = FormatBytes(float64(p.DownloadedBytes))
	}

	var right []string
	if p.Speed != nil && *p.Speed > 0 {
		right = append(right, FormatBytes(*p.Speed)+"/s")
	}
	if p.ETA != nil {
		right = append(right, "ETA "+FormatETA(*p.ETA))
	}

	if len(right) == 0 {
		return left
	}
	return left + "    " + strings.Join(right, "  •  ")
}

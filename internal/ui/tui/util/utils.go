package util

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// TruncateString cuts a string to fit within maxWidth visual width
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// FormatBitrate renders bits per second for humans, e.g. "2.5 Mbps"
func FormatBitrate(bps int) string {
	switch {
	case bps <= 0:
		return "auto"
	case bps >= 1_000_000:
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	default:
		return fmt.Sprintf("%d kbps", bps/1000)
	}
}

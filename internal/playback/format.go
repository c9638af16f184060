package playback

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime renders seconds as m:ss.  Zero or unknown times render as 00:00.
func FormatTime(seconds float64) string {
	if seconds == 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00"
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ParseSeekTime parses "90", "90.5", "1:30" or "1:02:03" into seconds
func ParseSeekTime(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidSeekTarget)
	}

	parts := strings.Split(input, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeekTarget, input)
	}

	var total float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSeekTarget, input)
		}
		// Only the leading component may exceed 59
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSeekTarget, input)
		}
		total = total*60 + v
	}
	return total, nil
}

// fraction returns part/whole limited to [0, 1], or 0 when whole is unknown
func fraction(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Min(math.Max(part/whole, 0), 1)
}

package logger

import (
	"fmt"
	"strings"
	"time"
)

// formatDuration renders the coarsest informative units of d: hours and
// minutes when present, otherwise seconds, otherwise milliseconds.
// Durations below one millisecond render as "".
//
//	3661s  -> "1 h1 m"
//	45s    -> "45 s"
//	90s    -> "1 m30 s"
//	500ms  -> "500 ms"
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}

	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	millis := int64(d/time.Millisecond) % 1000

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%d h", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%d m", minutes)
	}
	if hours == 0 {
		if seconds > 0 {
			fmt.Fprintf(&b, "%d s", seconds)
		}
		if millis > 0 && minutes == 0 && seconds == 0 {
			fmt.Fprintf(&b, "%d ms", millis)
		}
	}
	return b.String()
}

// formatRunDuration renders the total run time in the single largest unit
// that is at least one.
func formatRunDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%.4f Days", d.Hours()/24)
	case d >= time.Hour:
		return fmt.Sprintf("%.4f Hours", d.Hours())
	case d >= time.Minute:
		return fmt.Sprintf("%.4f Minutes", d.Minutes())
	default:
		return fmt.Sprintf("%.4f Seconds", d.Seconds())
	}
}

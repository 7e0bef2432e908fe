package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatDurationMs humanizes a millisecond duration into "Xm Ys" (or "Ys"
// under a minute). Negative values render as "0s".
func FormatDurationMs(ms float64) string {
	if ms <= 0 {
		return "0s"
	}
	total := int(math.Round(ms / 1000))
	minutes := total / 60
	seconds := total % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// FormatPercent renders a [0,1] rate as a percentage with at most one
// decimal place, trimming a trailing ".0".
func FormatPercent(rate float64) string {
	pct := Clamp01(rate) * 100
	s := fmt.Sprintf("%.1f", pct)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}

// Clamp01 bounds v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatHour renders an hour-of-day (0-23) as a 12-hour clock label.
func FormatHour(hour int) string {
	hour = ((hour % 24) + 24) % 24
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

// MinutesUntil returns the whole minutes remaining in d, rounded up.
func MinutesUntil(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(d.Milliseconds()) / 60000))
}

// Package schedule implements the pure time computations behind the
// reservation engine: clock parsing, interval overlap, slot generation
// and table eligibility. Everything operates on minutes since midnight
// so availability and allocation share one definition of "booked".
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts an HH:mm string to minutes since midnight. It
// accepts 0–23 hours and 0–59 minutes; anything else is an error.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes since midnight back to a zero-padded
// HH:mm string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) share at least one minute. Back-to-back bookings where
// one ends exactly when the other starts do not overlap. This is the
// single source of truth for conflict detection; both slot availability
// and table allocation go through it.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

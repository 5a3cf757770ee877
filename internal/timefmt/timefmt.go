// Package timefmt holds the display and parsing rules for event timestamps.
package timefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// WholeDays returns the number of complete days between start and now,
// rounding toward negative infinity so a start in the future yields a
// negative count rather than zero.
func WholeDays(start, now time.Time) int {
	secs := int64(now.Sub(start) / time.Second)
	days := secs / secondsPerDay
	if secs < 0 && secs%secondsPerDay != 0 {
		days--
	}
	return int(days)
}

// FormatElapsed renders a duration as "<days>d HH:MM:SS", clamping negative
// durations to zero.
func FormatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / secondsPerDay
	rem := total % secondsPerDay
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}

// FormatStartDate renders a start date as 12OCT for the current year and
// 12OCT2022 otherwise.
func FormatStartDate(t, now time.Time) string {
	label := fmt.Sprintf("%02d%s", t.Day(), strings.ToUpper(t.Format("Jan")))
	if t.Year() != now.Year() {
		return fmt.Sprintf("%s%d", label, t.Year())
	}
	return label
}

// FormatStart renders a start timestamp for display: the date label plus the
// time of day, e.g. "12OCT2022 14:30".
func FormatStart(t, now time.Time) string {
	return FormatStartDate(t, now) + " " + t.Format("15:04")
}

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ErrBadStart describes the accepted start timestamp shapes.
var ErrBadStart = errors.New("use YYYY-MM-DD HH:MM (or YYYY-MM-DDTHH:MM)")

// ParseStart parses a user-supplied start timestamp in local time.
//
// Accepted shapes:
//
//	YYYY-MM-DD HH:MM
//	YYYY-MM-DD HH:MM:SS
//	YYYY-MM-DDTHH:MM
//	YYYY-MM-DD          (assumes 00:00)
func ParseStart(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if dateOnly.MatchString(s) {
		s += " 00:00"
	}
	s = strings.ReplaceAll(s, "T", " ")

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrBadStart
}

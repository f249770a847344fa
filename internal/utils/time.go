package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Clock returns the current instant. Production code uses time.Now; tests pin it.
type Clock func() time.Time

// FixedClock returns a Clock that always reports the given date
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// TodayIn returns the civil date of the clock's current instant in the
// given timezone, as midnight UTC.
func (c Clock) TodayIn(loc *time.Location) time.Time {
	now := time.Now
	if c != nil {
		now = c
	}
	if loc == nil {
		loc = time.Local
	}
	return TruncateDay(now().In(loc))
}

// Date builds a civil date at midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDay drops the time of day and location, keeping the calendar date
func TruncateDay(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// AddDays shifts a civil date by n calendar days
func AddDays(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(TruncateDay(end).Sub(TruncateDay(start)).Hours() / 24)
}

// ParseDate parses a date string in the standard format (YYYY-MM-DD)
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats a civil date, returning "-" for nil
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(constants.DateFormat)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

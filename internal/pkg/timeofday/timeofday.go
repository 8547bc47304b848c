package timeofday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the civil date format used across the booking domain.
const DateLayout = "2006-01-02"

// ParseMinutes converts an "HH:MM" clock string to minutes from midnight.
// "24:00" is accepted as the exclusive end of day (1440).
func ParseMinutes(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}

	return h*60 + m, nil
}

// FormatMinutes converts minutes from midnight back to "HH:MM".
func FormatMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseDate parses a civil date string in the given location.
// The returned time is midnight local to loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// Combine turns a civil date plus minutes-from-midnight into an instant in loc.
func Combine(date string, minutes int, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// Weekday reports the weekday of a civil date in loc.
func Weekday(date string, loc *time.Location) (time.Weekday, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return 0, err
	}
	return day.Weekday(), nil
}

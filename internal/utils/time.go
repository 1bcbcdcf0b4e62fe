package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/clubdesk/internal/constants"
)

// FormatDateForAPI renders t as YYYY-MM-DD from its own calendar fields.
// The value is never converted to UTC first, so a local date near midnight
// keeps its day.
func FormatDateForAPI(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDateString builds local midnight of a YYYY-MM-DD string.
func ParseDateString(s string) time.Time {
	return ParseDateStringIn(s, time.Local)
}

// ParseDateStringIn builds midnight of a YYYY-MM-DD string in loc.
// The input is not validated: missing or non-numeric segments read as zero and
// out-of-range days roll over the way time.Date normalizes them.
func ParseDateStringIn(s string, loc *time.Location) time.Time {
	parts := strings.SplitN(s, "-", 3)
	fields := [3]int{}
	for i, p := range parts {
		n, _ := strconv.Atoi(p)
		fields[i] = n
	}
	t := time.Date(fields[0], time.Month(fields[1]), fields[2], 0, 0, 0, 0, loc)
	noon := time.Date(fields[0], time.Month(fields[1]), fields[2], 12, 0, 0, 0, loc)
	if t.Day() != noon.Day() {
		// midnight skipped by a DST change; use the first hour that exists
		t = time.Date(fields[0], time.Month(fields[1]), fields[2], 1, 0, 0, 0, loc)
	}
	return t
}

// IsDateRange reports whether date encodes a start:end range.
func IsDateRange(date string) bool {
	return strings.Contains(date, constants.DateRangeSeparator)
}

// SplitDateRange splits a date field on its first separator. For a single
// date both start and end are the date itself.
func SplitDateRange(date string) (start, end string, isRange bool) {
	start, end, isRange = strings.Cut(date, constants.DateRangeSeparator)
	if !isRange {
		return date, date, false
	}
	return start, end, true
}

// JoinDateRange builds the stored form of a multi-day event. An empty or equal
// end yields a single date.
func JoinDateRange(start, end string) string {
	if end == "" || end == start {
		return start
	}
	return start + constants.DateRangeSeparator + end
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// TodayString returns today's date in loc as YYYY-MM-DD.
func TodayString(loc *time.Location) string {
	return FormatDateForAPI(time.Now().In(loc))
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

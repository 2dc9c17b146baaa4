package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when a date shorthand matches none of
// the accepted shapes.
var ErrInvalidDateFormat = errors.New("invalid date format")

const dayFormat = "2006-01-02"

// Normalize expands an operator date shorthand into a YYYY-MM-DD string:
//
//	"T" (any case)  -> now's calendar date
//	"Y" (any case)  -> the day before now
//	"MM-DD"         -> that month/day in now's year
//
// MM-DD always assumes the current year, even near year boundaries
// ("12-31" entered in January resolves to the current year's Dec 31).
func Normalize(raw string, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(raw)

	switch strings.ToUpper(trimmed) {
	case "T":
		return now.Format(dayFormat), nil
	case "Y":
		return now.AddDate(0, 0, -1).Format(dayFormat), nil
	}

	parsed, err := time.Parse("01-02", trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, trimmed)
	}

	// Format directly rather than constructing a time.Time so an
	// out-of-range day is never silently normalized into the next month.
	date := fmt.Sprintf("%04d-%02d-%02d", now.Year(), int(parsed.Month()), parsed.Day())

	// The month/day parse above ran against year 0, a leap year, so a
	// Feb 29 shorthand slips through it. Re-parse against the target
	// year to reject days that don't exist in it.
	if _, err := time.Parse(dayFormat, date); err != nil {
		return "", fmt.Errorf("%w: %q is not a day in %d", ErrInvalidDateFormat, trimmed, now.Year())
	}
	return date, nil
}

// Package datecodec parses and formats OAI-PMH datestamps, ported from
// the reference implementation's date-handling helpers (parse_date,
// format_datestamp, datestamp_now).
package datecodec

import (
	"fmt"
	"time"
)

// Granularity is the precision a datestamp argument was supplied at.
type Granularity int

const (
	// Day means the argument was "YYYY-MM-DD".
	Day Granularity = iota
	// Second means the argument was "YYYY-MM-DDTHH:MM:SSZ".
	Second
)

func (g Granularity) String() string {
	if g == Day {
		return "day"
	}
	return "second"
}

const (
	dayLayout    = "2006-01-02"
	secondLayout = "2006-01-02T15:04:05Z"
)

// Parse accepts exactly two input shapes: "YYYY-MM-DD" (day
// granularity, with defaultTime supplying the hour/minute/second the
// caller wants filled in) and "YYYY-MM-DDTHH:MM:SSZ" (second
// granularity). Any other shape is rejected.
func Parse(text string, defaultTime time.Duration) (time.Time, Granularity, error) {
	switch len(text) {
	case len(secondLayout):
		t, err := time.Parse(secondLayout, text)
		if err != nil {
			return time.Time{}, Second, fmt.Errorf("datecodec: unsupported date format: %q", text)
		}
		return t, Second, nil

	case len(dayLayout):
		d, err := time.Parse(dayLayout, text)
		if err != nil {
			return time.Time{}, Day, fmt.Errorf("datecodec: unsupported date format: %q", text)
		}
		return d.Add(defaultTime), Day, nil

	default:
		return time.Time{}, Day, fmt.Errorf("datecodec: unsupported date format: %q", text)
	}
}

// StartOfDay is the default time-of-day used when parsing a "from"
// argument at day granularity: 00:00:00.
const StartOfDay = 0

// EndOfDay is the default time-of-day used when parsing an "until"
// argument at day granularity: 23:59:59.
const EndOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// Format renders t as an OAI-PMH compliant datestamp, always at second
// granularity, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(secondLayout)
}

// Now returns the current time truncated to second granularity, in UTC.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

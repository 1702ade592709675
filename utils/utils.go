// Package utils holds small shared helpers.
package utils

import (
	"time"
)

// StartBound combines a date ("2006-01-02") and an optional time ("15:04" or
// "15:04:05") into an inclusive lower bound in UTC. A missing time means the
// start of the day; a minute-granularity time starts at second 0.
func StartBound(date, clock string) *time.Time {
	return combineDateTime(date, clock, "00:00:00", ":00")
}

// EndBound combines a date and an optional time into an inclusive upper
// bound in UTC. A missing time means the last second of the day; a
// minute-granularity time covers through second 59 of that minute, so a
// bound of "14:05" includes everything inside 14:05.
func EndBound(date, clock string) *time.Time {
	return combineDateTime(date, clock, "23:59:59", ":59")
}

// combineDateTime builds the instant, padding a "15:04" clock with
// secondsPad.
//
// It returns nil when the date is empty or any part fails to parse:
// a malformed bound is treated as absent, never as a request error.
func combineDateTime(date, clock, defaultTime, secondsPad string) *time.Time {
	if date == "" {
		return nil
	}
	if clock == "" {
		clock = defaultTime
	}
	if len(clock) == len("15:04") {
		clock += secondsPad
	}

	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

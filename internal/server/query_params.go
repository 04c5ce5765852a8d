package server

import (
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// parseOptionalTime accepts RFC 3339 timestamps or bare dates. A bare date
// on the upper bound covers the whole day.
func parseOptionalTime(raw string, upperBound bool) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		if upperBound {
			t = endOfDay(t)
		}
		return &t, true
	}
	return nil, false
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

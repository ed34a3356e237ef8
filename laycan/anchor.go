package laycan

import (
	"fmt"
	"strings"
	"time"
)

// anchorLayouts are the absolute date formats seen in report headers and
// reported_date columns, tried in order.
var anchorLayouts = []string{
	time.RFC3339,
	ISOLayout,
	time.DateOnly,
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"20060102",
}

// ParseAnchor parses an absolute reported date. Only the calendar day is
// kept; the result is midnight UTC.
func ParseAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoAnchor
	}

	for _, layout := range anchorLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	// Vendor headers are usually upper case ("26 NOV 2018").
	if e, ok := classify(s, nil).(FullDate); ok {
		return date(e.Year, e.Month, e.Day), nil
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized reported date %q", ErrNoAnchor, s)
}

// ParseISO parses a date formatted with ISOLayout. It is the inverse of
// Range.ISO.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return t, nil
}

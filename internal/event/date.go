package event

import "time"

// dateFormats are the layouts accepted for RawEvent.Date, most common first.
// Scrapers are expected to emit ISO dates but a few older feeds still use
// US-style layouts.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"Jan 2 2006",
}

// ParseDate attempts to parse an event date string.
// Returns time.Time{} (zero value) if parsing fails.
func ParseDate(date string) time.Time {
	if date == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsPast reports whether the event date is before the start of today.
// Returns false if the date cannot be parsed (safer default).
func (e RawEvent) IsPast(now time.Time) bool {
	parsed := ParseDate(e.Date)
	if parsed.IsZero() {
		return false // can't determine, don't filter
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return parsed.Before(today)
}

// IsWithinDays reports whether the event is within N days from now.
// Returns true if days <= 0 (horizon disabled) or the date is unparseable.
func (e RawEvent) IsWithinDays(now time.Time, days int) bool {
	if days <= 0 {
		return true
	}
	parsed := ParseDate(e.Date)
	if parsed.IsZero() {
		return true // can't determine, include it
	}
	return parsed.Before(now.AddDate(0, 0, days))
}

// StartUnix returns the event start as unix seconds, combining Date with the
// optional HH:MM Time field, both interpreted as UTC like every other
// timestamp in the pipeline. Events without a parseable time default to
// 19:00, matching what the scrapers submit for doors-unknown shows.
func (e RawEvent) StartUnix() int64 {
	day := ParseDate(e.Date)
	if day.IsZero() {
		return 0
	}
	hour, minute := 19, 0
	if t, err := time.Parse("15:04", e.Time); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC).Unix()
}

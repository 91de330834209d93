package event

import (
	"crypto/sha256"
	"fmt"
)

// RawEvent is a scraped record handed off by an external scraper.
// It is immutable once created and lives for a single sync run.
type RawEvent struct {
	Title       string `json:"title"`
	Venue       string `json:"venue"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
}

// Identity is the canonical identity tuple of an event: normalized title,
// canonical venue name, and date. It is derived from a RawEvent after venue
// resolution and is never mutated.
type Identity struct {
	Title string // normalized via NormalizeTitle
	Venue string // canonical venue name from the venue table
	Date  string // YYYY-MM-DD
}

// NewIdentity builds the identity tuple for a raw record and its resolved
// canonical venue name.
func NewIdentity(raw RawEvent, canonicalVenue string) Identity {
	return Identity{
		Title: NormalizeTitle(raw.Title),
		Venue: canonicalVenue,
		Date:  raw.Date,
	}
}

// Fingerprint returns the stable identity hash for this tuple, rendered as a
// hex string. The encoding is title|venue|date over SHA-256, so the value is
// stable across process restarts and independent of any language's string
// hashing.
func (id Identity) Fingerprint() string {
	h := sha256.Sum256([]byte(id.Title + "|" + id.Venue + "|" + id.Date))
	return fmt.Sprintf("%x", h[:])
}

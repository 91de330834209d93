// Package event defines the raw scraped event record, its canonical identity
// tuple, and the stable fingerprint derived from it.
//
// The fingerprint is the central invariant of the sync system: two raw records
// from different scrapers describing the same real-world show must hash to the
// same fingerprint. It is a pure function of the normalized title, the
// canonical venue name, and the event date. Time of day, description text, and
// source URLs are deliberately excluded so that re-scrapes with a slightly
// different blurb still collapse to one identity.
package event

// Package index builds the authoritative view of what already exists on the
// remote calendar: every remote event re-fingerprinted through the same
// normalizer and venue resolver used for scraped records, grouped by
// fingerprint.
//
// A failed listing fetch is fatal to the run. Operating on an empty or
// partial index would make every scraped record look new and trigger mass
// re-submission, which is worse than doing nothing.
package index

import (
	"fmt"
	"sort"

	"github.com/orlandopunx/eventsync/internal/event"
	"github.com/orlandopunx/eventsync/internal/gancio"
	"github.com/orlandopunx/eventsync/internal/venue"
)

// Lister fetches the current remote event listing.
type Lister interface {
	ListEvents() ([]gancio.RemoteEvent, error)
}

// FetchError reports a failed remote listing. It is fatal to the run.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("remote index fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Indexed is one remote event with its computed identity.
type Indexed struct {
	Event         gancio.RemoteEvent
	Fingerprint   string
	Title         string // normalized title
	Venue         string // canonical venue name, or normalized raw name if unresolved
	Date          string // YYYY-MM-DD
	VenueResolved bool
}

// Index groups the remote listing by fingerprint and by venue/date.
type Index struct {
	byFingerprint map[string][]Indexed
	byVenueDate   map[string][]Indexed
	remoteIDs     map[int]bool
	total         int
}

// Build fetches the remote listing and indexes it. Any fetch failure comes
// back as a *FetchError.
func Build(l Lister, venues *venue.Resolver) (*Index, error) {
	events, err := l.ListEvents()
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return FromEvents(events, venues), nil
}

// FromEvents indexes an already-fetched listing. Remote events whose venue
// does not resolve are indexed under their normalized raw venue name: they
// can still cluster with each other but never match a locally resolved
// record.
func FromEvents(events []gancio.RemoteEvent, venues *venue.Resolver) *Index {
	ix := &Index{
		byFingerprint: make(map[string][]Indexed),
		byVenueDate:   make(map[string][]Indexed),
		remoteIDs:     make(map[int]bool),
		total:         len(events),
	}

	for _, ev := range events {
		rec := Indexed{
			Event: ev,
			Title: event.NormalizeTitle(ev.Title),
			Date:  ev.Date(),
		}

		if v, err := venues.Resolve(ev.Place.Name); err == nil {
			rec.Venue = v.CanonicalName
			rec.VenueResolved = true
		} else {
			rec.Venue = event.NormalizeVenueName(ev.Place.Name)
		}

		rec.Fingerprint = event.Identity{Title: rec.Title, Venue: rec.Venue, Date: rec.Date}.Fingerprint()

		ix.byFingerprint[rec.Fingerprint] = append(ix.byFingerprint[rec.Fingerprint], rec)
		ix.byVenueDate[venueDateKey(rec.Venue, rec.Date)] = append(ix.byVenueDate[venueDateKey(rec.Venue, rec.Date)], rec)
		ix.remoteIDs[ev.ID] = true
	}

	// Ascending remote id within every group, for deterministic keeper
	// selection and delete ordering.
	for _, group := range ix.byFingerprint {
		sortByID(group)
	}
	for _, group := range ix.byVenueDate {
		sortByID(group)
	}

	return ix
}

func sortByID(group []Indexed) {
	sort.Slice(group, func(i, j int) bool {
		return group[i].Event.ID < group[j].Event.ID
	})
}

func venueDateKey(venueName, date string) string {
	return venueName + "|" + date
}

// Lookup returns the remote events sharing a fingerprint, ascending by id.
func (ix *Index) Lookup(fingerprint string) []Indexed {
	return ix.byFingerprint[fingerprint]
}

// SameVenueDate returns the remote events at one canonical venue on one date,
// the candidate pool for fuzzy title matching.
func (ix *Index) SameVenueDate(venueName, date string) []Indexed {
	return ix.byVenueDate[venueDateKey(venueName, date)]
}

// HasRemoteID reports whether the listing contains the given remote id. Used
// to detect orphaned local state.
func (ix *Index) HasRemoteID(id int) bool {
	return ix.remoteIDs[id]
}

// AddAlias records that a local fingerprint maps to an already-indexed remote
// event, so later records in the same run exact-match instead of re-running
// the fuzzy fallback.
func (ix *Index) AddAlias(fingerprint string, rec Indexed) {
	group := append(ix.byFingerprint[fingerprint], rec)
	sortByID(group)
	ix.byFingerprint[fingerprint] = group
}

// Fingerprints returns all indexed fingerprints in sorted order.
func (ix *Index) Fingerprints() []string {
	keys := make([]string, 0, len(ix.byFingerprint))
	for k := range ix.byFingerprint {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the number of remote events indexed.
func (ix *Index) Total() int {
	return ix.total
}

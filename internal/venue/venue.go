package venue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orlandopunx/eventsync/internal/event"
)

// Record is a canonical venue: the authoritative name, the remote calendar's
// place id, and the alias spellings scrapers are known to use for it.
// Records are read-only during a run.
type Record struct {
	CanonicalName string   `yaml:"name"`
	PlaceID       int      `yaml:"place_id"`
	Aliases       []string `yaml:"aliases,omitempty"`
	Address       string   `yaml:"address,omitempty"`
}

// UnresolvedVenueError reports a raw venue string that matched nothing in the
// table. Records carrying such a venue are skipped, never defaulted.
type UnresolvedVenueError struct {
	Raw string
}

func (e *UnresolvedVenueError) Error() string {
	return fmt.Sprintf("unresolved venue: %q", e.Raw)
}

// Resolver maps raw venue strings to canonical records.
type Resolver struct {
	records []Record
	byName  map[string]*Record
	byAlias map[string]*Record
	names   []string // normalized canonical names, longest first, for containment
	aliases []string // normalized aliases, longest first, for containment
}

// longestFirst orders candidate keys for containment matching: longest first
// so the most specific key wins, ties broken alphabetically for determinism.
func longestFirst(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

// NewResolver builds a resolver over the given table. Canonical names and
// aliases are indexed under their normalized form.
func NewResolver(records []Record) *Resolver {
	r := &Resolver{
		records: records,
		byName:  make(map[string]*Record),
		byAlias: make(map[string]*Record),
	}

	for i := range records {
		rec := &records[i]
		name := event.NormalizeVenueName(rec.CanonicalName)
		if _, exists := r.byName[name]; !exists {
			r.byName[name] = rec
			r.names = append(r.names, name)
		}
		for _, alias := range rec.Aliases {
			key := event.NormalizeVenueName(alias)
			if key == "" {
				continue
			}
			if _, exists := r.byAlias[key]; !exists {
				r.byAlias[key] = rec
				r.aliases = append(r.aliases, key)
			}
		}
	}

	longestFirst(r.names)
	longestFirst(r.aliases)

	return r
}

// Resolve maps a raw venue string to its canonical record.
// Lookup order: exact canonical name, exact alias, then substring containment
// (e.g. "Conduit FL" matches the alias "conduit"). Returns
// UnresolvedVenueError when nothing matches.
func (r *Resolver) Resolve(raw string) (*Record, error) {
	key := event.NormalizeVenueName(raw)
	if key == "" {
		return nil, &UnresolvedVenueError{Raw: raw}
	}

	if rec, ok := r.byName[key]; ok {
		return rec, nil
	}
	if rec, ok := r.byAlias[key]; ok {
		return rec, nil
	}

	for _, name := range r.names {
		if strings.Contains(key, name) {
			return r.byName[name], nil
		}
	}
	for _, alias := range r.aliases {
		if strings.Contains(key, alias) {
			return r.byAlias[alias], nil
		}
	}

	return nil, &UnresolvedVenueError{Raw: raw}
}

// Records returns the underlying table.
func (r *Resolver) Records() []Record {
	return r.records
}

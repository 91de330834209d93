// Package dedupe decides what to do with a freshly scraped event: skip it
// because it already exists remotely, resubmit it because local state points
// at a vanished remote record, or submit it as new.
//
// The decision order matters and is fixed: an exact fingerprint match against
// the remote index is authoritative and short-circuits everything else, so an
// aggressive similarity threshold can never produce a false negative for an
// event we can identify exactly.
package dedupe

import (
	"github.com/orlandopunx/eventsync/internal/event"
	"github.com/orlandopunx/eventsync/internal/index"
	"github.com/orlandopunx/eventsync/internal/similarity"
	"github.com/orlandopunx/eventsync/internal/state"
)

// Action is what the caller should do with the record.
type Action int

const (
	// ActionSkip means the event already exists remotely.
	ActionSkip Action = iota
	// ActionSubmit means the event should be created remotely.
	ActionSubmit
)

// Decision reasons, recorded per item in the run summary.
const (
	ReasonExactMatch     = "exact_match"
	ReasonFuzzyMatch     = "fuzzy_match"
	ReasonOrphanRecovery = "orphan_recovery"
	ReasonNewEvent       = "new_event"
)

// Decision is the tagged outcome for one scraped record.
type Decision struct {
	Action  Action
	Reason  string
	Matched *index.Indexed // the remote event matched, when skipping
}

// Resolver consults the remote index and the persistent state store.
type Resolver struct {
	index     *index.Index
	store     *state.Store
	strategy  similarity.Strategy
	threshold float64
}

// NewResolver wires a resolver. threshold <= 0 selects the default.
func NewResolver(ix *index.Index, store *state.Store, strategy similarity.Strategy, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}
	return &Resolver{
		index:     ix,
		store:     store,
		strategy:  strategy,
		threshold: threshold,
	}
}

// Resolve decides the fate of one canonical identity. Side effects on the
// state store: an exact remote match heals unknown state to submitted; an
// orphan is marked orphaned before resubmission; a fuzzy match records the
// fingerprint mapping so future exact matches succeed.
func (r *Resolver) Resolve(id event.Identity, source string) Decision {
	fp := id.Fingerprint()

	// 1. Exact fingerprint match against the remote store is authoritative.
	if group := r.index.Lookup(fp); len(group) > 0 {
		matched := group[0]
		if !r.store.IsSubmitted(fp) {
			r.store.Mark(fp, &state.Entry{
				Status:   state.StatusSubmitted,
				RemoteID: matched.Event.ID,
				Source:   source,
				Title:    id.Title,
				Venue:    id.Venue,
				Date:     id.Date,
			})
		}
		return Decision{Action: ActionSkip, Reason: ReasonExactMatch, Matched: &matched}
	}

	// 2. Local state says submitted but the remote store disagrees: the
	// record was deleted externally. Mark it orphaned and resubmit.
	if entry, ok := r.store.Get(fp); ok && entry.Status == state.StatusSubmitted {
		r.store.SetStatus(fp, state.StatusOrphaned, 0)
		return Decision{Action: ActionSubmit, Reason: ReasonOrphanRecovery}
	}

	// 3. Fuzzy fallback: best title match among remote events sharing the
	// same canonical venue and date.
	if matched, ok := r.bestFuzzyMatch(id); ok {
		r.index.AddAlias(fp, matched)
		r.store.Mark(fp, &state.Entry{
			Status:   state.StatusSubmitted,
			RemoteID: matched.Event.ID,
			Source:   source,
			Title:    id.Title,
			Venue:    id.Venue,
			Date:     id.Date,
		})
		return Decision{Action: ActionSkip, Reason: ReasonFuzzyMatch, Matched: &matched}
	}

	// 4. Genuinely new.
	return Decision{Action: ActionSubmit, Reason: ReasonNewEvent}
}

// bestFuzzyMatch returns the highest-scoring candidate at or above the
// threshold. Ties resolve to the lowest remote id because candidates arrive
// sorted ascending.
func (r *Resolver) bestFuzzyMatch(id event.Identity) (index.Indexed, bool) {
	var (
		best      index.Indexed
		bestScore float64
		found     bool
	)

	for _, cand := range r.index.SameVenueDate(id.Venue, id.Date) {
		if !similarity.Similar(r.strategy, id.Title, cand.Title, r.threshold) {
			continue
		}
		score := r.strategy.Score(id.Title, cand.Title)
		if !found || score > bestScore {
			best = cand
			bestScore = score
			found = true
		}
	}

	return best, found
}

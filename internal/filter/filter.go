// Package filter narrows a scraped batch before deduplication: stale events
// whose date already passed are dropped, and an optional look-ahead horizon
// caps how far into the future submissions reach.
package filter

import (
	"time"

	"github.com/orlandopunx/eventsync/internal/event"
)

// Filter holds the pre-submission criteria for one run.
type Filter struct {
	Now          time.Time
	MaxDaysAhead int // 0 disables the horizon
}

// Outcome reports what the filter kept and why records were dropped.
type Outcome struct {
	Kept           []event.RawEvent
	SkippedPast    int
	SkippedHorizon int
}

// Apply partitions the batch. Records with unparseable dates are kept; the
// venue resolver and duplicate resolver downstream are the right places to
// reject them explicitly.
func (f *Filter) Apply(events []event.RawEvent) *Outcome {
	out := &Outcome{Kept: make([]event.RawEvent, 0, len(events))}

	for _, evt := range events {
		switch {
		case evt.IsPast(f.Now):
			out.SkippedPast++
		case !evt.IsWithinDays(f.Now, f.MaxDaysAhead):
			out.SkippedHorizon++
		default:
			out.Kept = append(out.Kept, evt)
		}
	}

	return out
}

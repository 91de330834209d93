// Package runner orchestrates full sync and cleanup passes: cooldown gating,
// remote index construction, per-record resolution, remote mutation, state
// persistence, and the run summary handed back to the command layer.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orlandopunx/eventsync/internal/dedupe"
	"github.com/orlandopunx/eventsync/internal/event"
	"github.com/orlandopunx/eventsync/internal/executor"
	"github.com/orlandopunx/eventsync/internal/filter"
	"github.com/orlandopunx/eventsync/internal/gancio"
	"github.com/orlandopunx/eventsync/internal/index"
	"github.com/orlandopunx/eventsync/internal/logger"
	"github.com/orlandopunx/eventsync/internal/notifier"
	"github.com/orlandopunx/eventsync/internal/reconcile"
	"github.com/orlandopunx/eventsync/internal/schedule"
	"github.com/orlandopunx/eventsync/internal/similarity"
	"github.com/orlandopunx/eventsync/internal/state"
	"github.com/orlandopunx/eventsync/internal/venue"
)

// ErrCooldownActive reports that the cooldown gate refused the run. The
// command layer maps it to its own exit code so cron can tell a skipped run
// from a failed one.
var ErrCooldownActive = errors.New("cooldown active, run skipped")

// Runner holds the wired dependencies for one process lifetime. The command
// layer builds it after login; tests build it around fakes.
type Runner struct {
	Log      *logger.Logger
	Store    *state.Store
	Venues   *venue.Resolver
	Lister   index.Lister
	Exec     *executor.Executor
	Notifier notifier.Notifier // nil disables announcements
	Gate     *schedule.Gate    // nil disables cooldown gating

	Strategy  similarity.Strategy
	Threshold float64
}

// SyncOptions tunes one sync pass.
type SyncOptions struct {
	DryRun       bool
	Force        bool // bypass the cooldown gate
	Now          time.Time
	MaxDaysAhead int
	Source       string
}

// Sync runs one full pass over a scraped batch. A dry run makes every
// decision but never mutates the remote store and never flushes local state.
func (r *Runner) Sync(ctx context.Context, events []event.RawEvent, opts SyncOptions) (*SyncSummary, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	sum := &SyncSummary{
		RunID:     uuid.NewString(),
		StartedAt: opts.Now,
		DryRun:    opts.DryRun,
		Input:     len(events),
	}

	if r.Gate != nil && !opts.Force && !r.Gate.ShouldRun(opts.Now) {
		last, _ := r.Gate.LastRun()
		r.Log.Info("cooldown active, skipping run", logger.Fields{
			"run_id":   sum.RunID,
			"last_run": last.Format(time.RFC3339),
		})
		return sum, ErrCooldownActive
	}
	if r.Gate != nil && !opts.DryRun {
		if err := r.Gate.MarkRun(opts.Now); err != nil {
			r.Log.Warn("could not record run start", logger.Fields{"error": err.Error()})
		}
	}

	r.Log.Info("sync run started", logger.Fields{
		"run_id":  sum.RunID,
		"input":   len(events),
		"dry_run": opts.DryRun,
	})

	ix, err := index.Build(r.Lister, r.Venues)
	if err != nil {
		r.Log.Error("remote index fetch failed, aborting run", logger.Fields{"run_id": sum.RunID}, err)
		return sum, err
	}
	sum.RemoteTotal = ix.Total()

	f := &filter.Filter{Now: opts.Now, MaxDaysAhead: opts.MaxDaysAhead}
	outcome := f.Apply(events)
	sum.SkippedPast = outcome.SkippedPast
	sum.SkippedHorizon = outcome.SkippedHorizon

	resolver := dedupe.NewResolver(ix, r.Store, r.Strategy, r.Threshold)

	var announcements []notifier.Event
	for _, raw := range outcome.Kept {
		item := r.syncOne(ctx, raw, resolver, opts, sum)
		sum.Items = append(sum.Items, item)
		if item.Action == "submitted" && !opts.DryRun {
			announcements = append(announcements, notifier.Event{
				Title: raw.Title,
				Venue: raw.Venue,
				Date:  raw.Date,
				URL:   raw.SourceURL,
			})
		}
	}

	if !opts.DryRun {
		if err := r.Store.Flush(); err != nil {
			r.Log.Error("state flush failed", logger.Fields{"run_id": sum.RunID}, err)
			return sum, err
		}
	}

	if r.Notifier != nil && len(announcements) > 0 {
		if err := r.Notifier.Notify(announcements); err != nil {
			// Announcements are best-effort and never fail the run.
			r.Log.Warn("announcement failed", logger.Fields{"run_id": sum.RunID, "error": err.Error()})
		}
	}

	r.Log.Info("sync run finished", logger.Fields{
		"run_id":    sum.RunID,
		"submitted": sum.Submitted,
		"skipped":   sum.SkippedExact + sum.SkippedFuzzy,
		"failed":    sum.Failed,
	})

	return sum, nil
}

// syncOne resolves and, when needed, submits a single record.
func (r *Runner) syncOne(ctx context.Context, raw event.RawEvent, resolver *dedupe.Resolver, opts SyncOptions, sum *SyncSummary) ItemResult {
	item := ItemResult{Title: raw.Title, Venue: raw.Venue, Date: raw.Date}

	rec, err := r.Venues.Resolve(raw.Venue)
	if err != nil {
		sum.SkippedUnresolvedVenue++
		item.Action = "skipped"
		item.Reason = "unresolved_venue"
		r.Log.Warn("skipping record with unresolved venue", logger.Fields{
			"title": raw.Title,
			"venue": raw.Venue,
		})
		return item
	}

	id := event.NewIdentity(raw, rec.CanonicalName)
	decision := resolver.Resolve(id, opts.Source)

	if decision.Action == dedupe.ActionSkip {
		item.Action = "skipped"
		item.Reason = decision.Reason
		if decision.Matched != nil {
			item.RemoteID = decision.Matched.Event.ID
		}
		switch decision.Reason {
		case dedupe.ReasonExactMatch:
			sum.SkippedExact++
		case dedupe.ReasonFuzzyMatch:
			sum.SkippedFuzzy++
		}
		return item
	}

	if decision.Reason == dedupe.ReasonOrphanRecovery {
		sum.OrphansResubmitted++
	}

	if opts.DryRun {
		sum.Submitted++
		item.Action = "submitted"
		item.Reason = decision.Reason
		return item
	}

	fp := id.Fingerprint()
	r.Store.Mark(fp, &state.Entry{
		Status: state.StatusPending,
		Source: opts.Source,
		Title:  id.Title,
		Venue:  id.Venue,
		Date:   id.Date,
	})

	created, err := r.Exec.Create(ctx, &gancio.NewEvent{
		Title:         raw.Title,
		Description:   raw.Description,
		StartDatetime: raw.StartUnix(),
		PlaceID:       rec.PlaceID,
		Tags:          []string{"auto-sync"},
	})
	if err != nil {
		// The pending entry stays on disk so a later pass can tell an
		// interrupted submission from an event never attempted.
		sum.Failed++
		item.Action = "failed"
		item.Reason = decision.Reason
		item.Err = err.Error()
		r.Log.Error("event submission failed", logger.Fields{"title": raw.Title}, err)
		return item
	}

	if created.ID == 0 {
		// The server accepted the event but reported no id. Without one the
		// orphan sweep could never reach this entry, so it stays pending
		// until a later pass exact-matches it against the listing.
		sum.Submitted++
		item.Action = "submitted"
		item.Reason = decision.Reason
		r.Log.Warn("create response carried no event id", logger.Fields{"title": raw.Title})
		return item
	}

	r.Store.SetStatus(fp, state.StatusSubmitted, created.ID)
	sum.Submitted++
	item.Action = "submitted"
	item.Reason = decision.Reason
	item.RemoteID = created.ID
	return item
}

// CleanupOptions tunes one reconciliation pass.
type CleanupOptions struct {
	Execute bool // false plans and reports without deleting
	Now     time.Time
}

// CleanupPass is a planned reconciliation, ready to execute. Separating the
// plan from its execution lets the command layer show the operator exactly
// what will be deleted and then apply that same plan, instead of refetching
// the listing after confirmation.
type CleanupPass struct {
	runner *Runner
	ix     *index.Index
	sum    *CleanupSummary
}

// Cleanup reconciles remote duplicate clusters in one shot: builds the
// deletion plan and, when executing, applies it immediately.
func (r *Runner) Cleanup(ctx context.Context, opts CleanupOptions) (*CleanupSummary, error) {
	pass, err := r.PlanCleanup(opts.Now)
	if err != nil {
		return pass.Summary(), err
	}
	if !opts.Execute {
		return pass.Summary(), nil
	}
	return pass.Execute(ctx)
}

// PlanCleanup builds the deletion plan without mutating anything.
func (r *Runner) PlanCleanup(now time.Time) (*CleanupPass, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pass := &CleanupPass{
		runner: r,
		sum: &CleanupSummary{
			RunID:     uuid.NewString(),
			StartedAt: now,
		},
	}

	ix, err := index.Build(r.Lister, r.Venues)
	if err != nil {
		r.Log.Error("remote index fetch failed, aborting cleanup", logger.Fields{"run_id": pass.sum.RunID}, err)
		return pass, err
	}
	pass.ix = ix
	pass.sum.RemoteTotal = ix.Total()

	plan := reconcile.BuildPlan(ix)
	pass.sum.Plan = plan
	pass.sum.Clusters = len(plan.Clusters)
	pass.sum.ToDelete = plan.ToDelete

	r.Log.Info("cleanup plan built", logger.Fields{
		"run_id":    pass.sum.RunID,
		"clusters":  pass.sum.Clusters,
		"to_delete": pass.sum.ToDelete,
	})

	return pass, nil
}

// Summary returns the pass's summary, populated with the plan.
func (p *CleanupPass) Summary() *CleanupSummary {
	return p.sum
}

// Execute applies the planned pass: the canary-guarded delete batch when the
// plan schedules deletions, then the orphan sweep and a state flush. The
// sweep runs even when no clusters were found; an entry whose remote record
// vanished must still transition to orphaned.
func (p *CleanupPass) Execute(ctx context.Context) (*CleanupSummary, error) {
	r := p.runner
	sum := p.sum
	plan := sum.Plan
	sum.Executed = true

	var batchErr error
	if !plan.Empty() {
		targets := make([]executor.DeleteTarget, 0, plan.ToDelete)
		for _, t := range plan.DeleteTargets() {
			targets = append(targets, executor.DeleteTarget{ID: t.Event.ID, Title: t.Event.Title})
		}

		var br *executor.BatchResult
		br, batchErr = r.Exec.DeleteBatch(ctx, targets)
		sum.Deleted = br.Succeeded
		sum.DeleteFailed = br.Failed
		sum.SkippedAfterAbort = br.Skipped
		sum.Aborted = br.Aborted

		deletedIDs := make(map[int]bool, br.Succeeded)
		for _, res := range br.Results {
			if res.OK {
				deletedIDs[res.RemoteID] = true
			}
		}

		// A local entry tracking a deleted duplicate moves to its terminal
		// state. Entries pointing at a surviving keeper are untouched; the
		// fingerprint still exists remotely.
		for _, e := range r.Store.Entries() {
			if e.RemoteID != 0 && deletedIDs[e.RemoteID] {
				r.Store.SetStatus(e.Fingerprint, state.StatusRemovedDuplicate, 0)
			}
		}
	}

	sum.OrphansMarked = r.markOrphans(p.ix)

	if err := r.Store.Flush(); err != nil {
		r.Log.Error("state flush failed", logger.Fields{"run_id": sum.RunID}, err)
		return sum, err
	}

	if batchErr != nil {
		r.Log.Error("delete batch aborted", logger.Fields{"run_id": sum.RunID}, batchErr)
		return sum, batchErr
	}

	r.Log.Info("cleanup run finished", logger.Fields{
		"run_id":  sum.RunID,
		"deleted": sum.Deleted,
		"failed":  sum.DeleteFailed,
		"orphans": sum.OrphansMarked,
	})

	return sum, nil
}

// markOrphans flags local entries whose remote event no longer exists.
func (r *Runner) markOrphans(ix *index.Index) int {
	marked := 0
	for _, e := range r.Store.Entries() {
		if e.Status != state.StatusSubmitted || e.RemoteID == 0 {
			continue
		}
		if ix.HasRemoteID(e.RemoteID) {
			continue
		}
		r.Store.SetStatus(e.Fingerprint, state.StatusOrphaned, 0)
		marked++
	}
	return marked
}

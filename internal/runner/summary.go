package runner

import (
	"time"

	"github.com/orlandopunx/eventsync/internal/reconcile"
)

// ItemResult is the per-record outcome of one sync decision, carried in the
// run summary for auditing.
type ItemResult struct {
	Title    string `json:"title"`
	Venue    string `json:"venue"`
	Date     string `json:"date"`
	Action   string `json:"action"` // "submitted", "skipped", "failed"
	Reason   string `json:"reason,omitempty"`
	RemoteID int    `json:"remote_id,omitempty"`
	Err      string `json:"error,omitempty"`
}

// SyncSummary aggregates one sync run.
type SyncSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	DryRun    bool      `json:"dry_run"`

	RemoteTotal int `json:"remote_total"`
	Input       int `json:"input"`

	Submitted              int `json:"submitted"`
	SkippedExact           int `json:"skipped_exact"`
	SkippedFuzzy           int `json:"skipped_fuzzy"`
	SkippedPast            int `json:"skipped_past"`
	SkippedHorizon         int `json:"skipped_horizon"`
	SkippedUnresolvedVenue int `json:"skipped_unresolved_venue"`
	OrphansResubmitted     int `json:"orphans_resubmitted"`
	Failed                 int `json:"failed"`

	Items []ItemResult `json:"items,omitempty"`
}

// CleanupSummary aggregates one reconciliation run.
type CleanupSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Executed  bool      `json:"executed"`

	RemoteTotal       int  `json:"remote_total"`
	Clusters          int  `json:"clusters"`
	ToDelete          int  `json:"to_delete"`
	Deleted           int  `json:"deleted"`
	DeleteFailed      int  `json:"delete_failed"`
	SkippedAfterAbort int  `json:"skipped_after_abort"`
	Aborted           bool `json:"aborted"`
	OrphansMarked     int  `json:"orphans_marked"`

	Plan *reconcile.Plan `json:"-"`
}

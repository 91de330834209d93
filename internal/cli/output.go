package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/orlandopunx/eventsync/internal/reconcile"
	"github.com/orlandopunx/eventsync/internal/runner"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// parseFormat validates the --format flag value.
func parseFormat(raw string) (OutputFormat, error) {
	switch OutputFormat(raw) {
	case FormatText, FormatJSON:
		return OutputFormat(raw), nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", raw)
	}
}

// writeJSON outputs a result as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteSyncSummary writes a sync run summary in the specified format.
func WriteSyncSummary(w io.Writer, sum *runner.SyncSummary, format OutputFormat, verbose bool) error {
	if format == FormatJSON {
		return writeJSON(w, sum)
	}

	mode := "execute"
	if sum.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "Sync run %s (%s)\n", sum.RunID, mode)
	fmt.Fprintf(w, "Remote events indexed: %d\n", sum.RemoteTotal)
	fmt.Fprintf(w, "Scraped records: %d\n\n", sum.Input)

	fmt.Fprintf(w, "  Submitted:          %d\n", sum.Submitted)
	fmt.Fprintf(w, "  Skipped (exact):    %d\n", sum.SkippedExact)
	fmt.Fprintf(w, "  Skipped (fuzzy):    %d\n", sum.SkippedFuzzy)
	fmt.Fprintf(w, "  Skipped (past):     %d\n", sum.SkippedPast)
	if sum.SkippedHorizon > 0 {
		fmt.Fprintf(w, "  Skipped (horizon):  %d\n", sum.SkippedHorizon)
	}
	fmt.Fprintf(w, "  Unresolved venues:  %d\n", sum.SkippedUnresolvedVenue)
	if sum.OrphansResubmitted > 0 {
		fmt.Fprintf(w, "  Orphans resubmitted: %d\n", sum.OrphansResubmitted)
	}
	fmt.Fprintf(w, "  Failed:             %d\n", sum.Failed)

	if verbose && len(sum.Items) > 0 {
		fmt.Fprintln(w)
		for _, item := range sum.Items {
			line := fmt.Sprintf("%s: %s @ %s on %s", item.Action, item.Title, item.Venue, item.Date)
			if item.Reason != "" {
				line += fmt.Sprintf(" (%s)", item.Reason)
			}
			if item.RemoteID != 0 {
				line += fmt.Sprintf(" [remote %d]", item.RemoteID)
			}
			if item.Err != "" {
				line += fmt.Sprintf(" error: %s", item.Err)
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	return nil
}

// WriteCleanupSummary writes a cleanup run summary in the specified format.
// showPlan includes the full per-cluster listing in text mode.
func WriteCleanupSummary(w io.Writer, sum *runner.CleanupSummary, format OutputFormat, showPlan bool) error {
	if format == FormatJSON {
		return writeJSON(w, sum)
	}

	fmt.Fprintf(w, "Cleanup run %s\n", sum.RunID)
	fmt.Fprintf(w, "Remote events examined: %d\n", sum.RemoteTotal)
	fmt.Fprintf(w, "Duplicate clusters: %d (%d events to delete)\n", sum.Clusters, sum.ToDelete)

	if showPlan && sum.Plan != nil && !sum.Plan.Empty() {
		fmt.Fprintln(w)
		writePlan(w, sum.Plan)
	}

	if sum.Executed {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Deleted:       %d\n", sum.Deleted)
		fmt.Fprintf(w, "  Failed:        %d\n", sum.DeleteFailed)
		if sum.Aborted {
			fmt.Fprintf(w, "  Skipped:       %d (batch aborted after failed canary)\n", sum.SkippedAfterAbort)
		}
		fmt.Fprintf(w, "  Orphans found: %d\n", sum.OrphansMarked)
	} else if sum.ToDelete > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Nothing deleted. Re-run with --execute to apply this plan.")
	} else {
		fmt.Fprintln(w, "No duplicates found.")
	}

	return nil
}

// writePlan lists every cluster with its keeper and scheduled deletions.
func writePlan(w io.Writer, plan *reconcile.Plan) {
	for i, c := range plan.Clusters {
		keeper := c.Keeper.Event
		fmt.Fprintf(w, "Cluster %d: %q @ %s on %s\n", i+1, keeper.Title, c.Keeper.Venue, c.Keeper.Date)
		fmt.Fprintf(w, "  KEEP   %d: %s\n", keeper.ID, keeper.Title)
		for _, extra := range c.Extras {
			fmt.Fprintf(w, "  DELETE %d: %s\n", extra.Event.ID, extra.Event.Title)
		}
	}
}

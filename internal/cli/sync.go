package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orlandopunx/eventsync/internal/executor"
	"github.com/orlandopunx/eventsync/internal/feed"
	"github.com/orlandopunx/eventsync/internal/logger"
	"github.com/orlandopunx/eventsync/internal/notifier"
	"github.com/orlandopunx/eventsync/internal/runner"
	"github.com/orlandopunx/eventsync/internal/schedule"
	"github.com/orlandopunx/eventsync/internal/similarity"
)

var (
	flagSyncEvents  string
	flagSyncDryRun  bool
	flagSyncExecute bool
	flagSyncForce   bool
	flagSyncSource  string
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Submit scraped events, skipping duplicates",
		Long: `Reads a JSON file of scraped event records, deduplicates each record
against the remote listing and local submission history, and submits
the genuinely new ones.

Dry-run is the default: decisions are made and reported but nothing is
submitted and no state is written. Pass --execute to submit.`,
		RunE: runSync,
	}

	cmd.Flags().StringVar(&flagSyncEvents, "events", "", "JSON file of scraped events (required)")
	cmd.Flags().BoolVar(&flagSyncDryRun, "dry-run", false, "Report decisions without submitting (the default)")
	cmd.Flags().BoolVar(&flagSyncExecute, "execute", false, "Actually submit new events")
	cmd.Flags().BoolVar(&flagSyncForce, "force", false, "Bypass the cooldown gate")
	cmd.Flags().StringVar(&flagSyncSource, "source", "", "Source label recorded in submission state")

	cmd.MarkFlagRequired("events")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	if flagSyncDryRun && flagSyncExecute {
		return fmt.Errorf("--dry-run and --execute are mutually exclusive")
	}
	dryRun := !flagSyncExecute

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger()

	// The gate is checked before any network traffic so a skipped run costs
	// nothing. The runner re-checks it with the same rules.
	gate := schedule.NewGate(cfg.LastRunFile, cfg.Cooldown())
	if !flagSyncForce && !gate.ShouldRun(time.Now().UTC()) {
		log.Info("cooldown active, skipping run", nil)
		return runner.ErrCooldownActive
	}

	events, err := feed.Load(flagSyncEvents)
	if err != nil {
		return err
	}

	client, err := newRemoteClient(cfg)
	if err != nil {
		return err
	}

	store, err := openState(cfg, log)
	if err != nil {
		return err
	}

	venues, err := loadVenues(cfg)
	if err != nil {
		return err
	}

	r := &runner.Runner{
		Log:       log,
		Store:     store,
		Venues:    venues,
		Lister:    client,
		Exec:      executor.New(client, cfg.CallInterval(), cfg.CanarySize),
		Notifier:  pickNotifier(dryRun, log),
		Gate:      gate,
		Strategy:  similarity.SequenceRatio{},
		Threshold: cfg.FuzzyThreshold,
	}

	sum, err := r.Sync(cmd.Context(), events, runner.SyncOptions{
		DryRun:       dryRun,
		Force:        flagSyncForce,
		Now:          time.Now().UTC(),
		MaxDaysAhead: cfg.MaxDaysAhead,
		Source:       flagSyncSource,
	})
	if err != nil {
		return err
	}

	return WriteSyncSummary(os.Stdout, sum, format, flagVerbose)
}

// pickNotifier selects the announcement channel: none on dry runs, Twitter
// when credentials are present, otherwise none.
func pickNotifier(dryRun bool, log *logger.Logger) notifier.Notifier {
	if dryRun {
		return nil
	}
	n, err := notifier.NewTwitterNotifier()
	if err != nil {
		log.Debug("announcements disabled", logger.Fields{"reason": err.Error()})
		return nil
	}
	return n
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orlandopunx/eventsync/internal/executor"
	"github.com/orlandopunx/eventsync/internal/runner"
	"github.com/orlandopunx/eventsync/internal/similarity"
)

var (
	flagCleanupAnalyze bool
	flagCleanupPreview bool
	flagCleanupExecute bool
	flagCleanupForce   bool
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Collapse duplicate clusters already on the remote calendar",
		Long: `Groups the remote listing by fingerprint and, for every cluster of
duplicates, keeps the event with the lowest id and deletes the rest.

Preview is the default: the full deletion plan is printed and nothing
is touched. Pass --execute to apply the plan; a typed confirmation is
required unless --force is also given.`,
		RunE: runCleanup,
	}

	cmd.Flags().BoolVar(&flagCleanupAnalyze, "analyze", false, "Print cluster counts only")
	cmd.Flags().BoolVar(&flagCleanupPreview, "preview", false, "Print the full deletion plan (the default)")
	cmd.Flags().BoolVar(&flagCleanupExecute, "execute", false, "Delete the extra events in each cluster")
	cmd.Flags().BoolVar(&flagCleanupForce, "force", false, "Skip the typed confirmation")

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	modes := 0
	for _, set := range []bool{flagCleanupAnalyze, flagCleanupPreview, flagCleanupExecute} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("--analyze, --preview, and --execute are mutually exclusive")
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger()

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
		Strategy:  similarity.SequenceRatio{},
		Threshold: cfg.FuzzyThreshold,
	}

	// Plan first regardless of mode so the confirmation prompt can show
	// exactly what will be deleted. The confirmed pass is the one executed;
	// the listing is never refetched between prompt and deletion.
	pass, err := r.PlanCleanup(time.Now().UTC())
	if err != nil {
		return err
	}
	sum := pass.Summary()

	showPlan := !flagCleanupAnalyze
	if !flagCleanupExecute {
		return WriteCleanupSummary(os.Stdout, sum, format, showPlan)
	}

	if sum.ToDelete > 0 && !flagCleanupForce {
		WriteCleanupSummary(os.Stdout, sum, FormatText, true)
		if !confirmDeletion(os.Stdin, os.Stdout, sum.ToDelete) {
			fmt.Fprintln(os.Stdout, "Aborted. Nothing deleted.")
			return nil
		}
	}

	sum, err = pass.Execute(cmd.Context())
	if writeErr := WriteCleanupSummary(os.Stdout, sum, format, false); writeErr != nil {
		return writeErr
	}
	return err
}

// confirmDeletion requires the operator to type DELETE before a destructive
// batch runs.
func confirmDeletion(in io.Reader, out io.Writer, count int) bool {
	fmt.Fprintf(out, "\nAbout to delete %d remote events. Type DELETE to confirm: ", count)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "DELETE"
}

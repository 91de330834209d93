package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orlandopunx/eventsync/internal/config"
	"github.com/orlandopunx/eventsync/internal/gancio"
	"github.com/orlandopunx/eventsync/internal/index"
	"github.com/orlandopunx/eventsync/internal/reconcile"
	"github.com/orlandopunx/eventsync/internal/venue"
)

var flagAnalyzeHTML string

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report duplicate clusters without touching anything",
		Long: `Builds the duplicate cluster report, either from the live events API
or, with --html, from a saved admin page export. The offline mode groups
events by slug base and is useful when the API is unreachable.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&flagAnalyzeHTML, "html", "", "Saved admin HTML page to analyze instead of the live API")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	venues, err := loadVenues(cfg)
	if err != nil {
		return err
	}

	var ix *index.Index
	if flagAnalyzeHTML != "" {
		ix, err = indexFromHTML(flagAnalyzeHTML, venues)
	} else {
		ix, err = indexFromAPI(cfg, venues)
	}
	if err != nil {
		return err
	}

	plan := reconcile.BuildPlan(ix)

	if format == FormatJSON {
		return writeJSON(os.Stdout, analyzeResult{
			RemoteTotal: ix.Total(),
			Clusters:    len(plan.Clusters),
			ToDelete:    plan.ToDelete,
		})
	}

	fmt.Fprintf(os.Stdout, "Events examined: %d\n", ix.Total())
	fmt.Fprintf(os.Stdout, "Duplicate clusters: %d (%d extra events)\n", len(plan.Clusters), plan.ToDelete)
	if !plan.Empty() {
		fmt.Fprintln(os.Stdout)
		writePlan(os.Stdout, plan)
	}
	return nil
}

type analyzeResult struct {
	RemoteTotal int `json:"remote_total"`
	Clusters    int `json:"clusters"`
	ToDelete    int `json:"to_delete"`
}

// indexFromHTML builds the index from a saved admin page export.
func indexFromHTML(path string, venues *venue.Resolver) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening admin page: %w", err)
	}
	defer f.Close()

	events, err := gancio.ParseAdminEvents(f)
	if err != nil {
		return nil, err
	}
	return index.FromEvents(events, venues), nil
}

// indexFromAPI builds the index from the live events listing. The listing
// endpoint is public, so no login is needed for analysis.
func indexFromAPI(cfg *config.Config, venues *venue.Resolver) (*index.Index, error) {
	if cfg.RemoteBaseURL == "" {
		return nil, fmt.Errorf("missing required settings: REMOTE_BASE_URL")
	}
	client, err := gancio.NewClient(cfg.RemoteBaseURL)
	if err != nil {
		return nil, err
	}
	return index.Build(client, venues)
}

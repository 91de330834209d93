package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orlandopunx/eventsync/internal/config"
	"github.com/orlandopunx/eventsync/internal/gancio"
	"github.com/orlandopunx/eventsync/internal/logger"
	"github.com/orlandopunx/eventsync/internal/runner"
	"github.com/orlandopunx/eventsync/internal/state"
	"github.com/orlandopunx/eventsync/internal/venue"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitSkipped = 2
)

// defaultConfigFile is picked up automatically when present and --config is
// not given.
const defaultConfigFile = "eventsync.yaml"

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventsync",
		Short: "Sync scraped events to a Gancio calendar without duplicates",
		Long: `eventsync submits scraped event records to a Gancio calendar,
deduplicating against the remote listing and local submission history,
and reconciles duplicate clusters already present on the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (YAML); defaults to ./"+defaultConfigFile+" when present")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output and debug logging")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newCleanupCmd())
	cmd.AddCommand(newAnalyzeCmd())

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, runner.ErrCooldownActive) {
			os.Exit(ExitSkipped)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

// loadConfig loads configuration honoring --config and the default file.
func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" && config.FileExists(defaultConfigFile) {
		path = defaultConfigFile
	}
	return config.Load(path)
}

// newLogger builds the process logger on stderr, honoring --verbose.
func newLogger() *logger.Logger {
	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	return logger.New(level, os.Stderr)
}

// loadVenues loads the configured venue table, falling back to the built-in
// table when none is configured.
func loadVenues(cfg *config.Config) (*venue.Resolver, error) {
	if cfg.VenueTable == "" {
		return venue.NewResolver(venue.DefaultTable()), nil
	}
	records, err := venue.LoadTable(cfg.VenueTable)
	if err != nil {
		return nil, err
	}
	return venue.NewResolver(records), nil
}

// openState opens the state store, downgrading corruption to a warning: the
// run proceeds with an empty store rather than refusing to sync.
func openState(cfg *config.Config, log *logger.Logger) (*state.Store, error) {
	store, err := state.Open(cfg.StateFile)
	var corrupt *state.CorruptionError
	if errors.As(err, &corrupt) {
		log.Warn("state file corrupt, starting from empty state", logger.Fields{
			"path":  cfg.StateFile,
			"error": corrupt.Error(),
		})
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newRemoteClient builds and authenticates the remote calendar client.
func newRemoteClient(cfg *config.Config) (*gancio.Client, error) {
	if err := cfg.ValidateRemote(); err != nil {
		return nil, err
	}
	client, err := gancio.NewClient(cfg.RemoteBaseURL)
	if err != nil {
		return nil, err
	}
	if err := client.Login(cfg.RemoteEmail, cfg.RemotePassword); err != nil {
		return nil, err
	}
	return client, nil
}

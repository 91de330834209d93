// Package config assembles the one Config value injected into every
// component. Nothing in the engine reads ambient globals or environment
// variables directly.
//
// Sources are layered with koanf: built-in defaults, then an optional YAML
// file, then environment variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/orlandopunx/eventsync/internal/similarity"
)

// Config carries everything a run needs.
type Config struct {
	// Remote calendar.
	RemoteBaseURL  string `koanf:"remote_base_url"`
	RemoteEmail    string `koanf:"remote_email"`
	RemotePassword string `koanf:"remote_password"`

	// Local files.
	StateFile   string `koanf:"state_file"`
	LastRunFile string `koanf:"last_run_file"`
	VenueTable  string `koanf:"venue_table"` // empty selects the built-in table

	// Run tuning.
	CooldownMinutes     int     `koanf:"cooldown_minutes"`
	CallIntervalSeconds int     `koanf:"call_interval_seconds"`
	CanarySize          int     `koanf:"canary_size"`
	FuzzyThreshold      float64 `koanf:"fuzzy_threshold"`
	MaxDaysAhead        int     `koanf:"max_days_ahead"`
}

// defaults mirror how the production deployment ran: hourly cron with a 12h
// effective cadence, 2s between remote calls, 3 canary deletions.
func defaults() *Config {
	return &Config{
		StateFile:           "data/sync_state.json",
		LastRunFile:         "data/last_run",
		CooldownMinutes:     60,
		CallIntervalSeconds: 2,
		CanarySize:          3,
		FuzzyThreshold:      similarity.DefaultThreshold,
		MaxDaysAhead:        0,
	}
}

// envKeys are the environment variables the loader recognizes, mapped to
// their koanf paths. An explicit allow-list keeps unrelated environment
// noise out of the config.
var envKeys = map[string]string{
	"REMOTE_BASE_URL":                 "remote_base_url",
	"REMOTE_EMAIL":                    "remote_email",
	"REMOTE_PASSWORD":                 "remote_password",
	"EVENTSYNC_STATE_FILE":            "state_file",
	"EVENTSYNC_LAST_RUN_FILE":         "last_run_file",
	"EVENTSYNC_VENUE_TABLE":           "venue_table",
	"EVENTSYNC_COOLDOWN_MINUTES":      "cooldown_minutes",
	"EVENTSYNC_CALL_INTERVAL_SECONDS": "call_interval_seconds",
	"EVENTSYNC_CANARY_SIZE":           "canary_size",
	"EVENTSYNC_FUZZY_THRESHOLD":       "fuzzy_threshold",
	"EVENTSYNC_MAX_DAYS_AHEAD":        "max_days_ahead",
}

// Load builds the config from defaults, the optional YAML file at path, and
// the environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(name string) string {
		if key, ok := envKeys[name]; ok {
			return key
		}
		return "" // skip everything else
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// ValidateRemote checks the fields required for any command that talks to
// the remote calendar.
func (c *Config) ValidateRemote() error {
	var missing []string
	if c.RemoteBaseURL == "" {
		missing = append(missing, "REMOTE_BASE_URL")
	}
	if c.RemoteEmail == "" {
		missing = append(missing, "REMOTE_EMAIL")
	}
	if c.RemotePassword == "" {
		missing = append(missing, "REMOTE_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Cooldown returns the configured cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// CallInterval returns the configured spacing between remote calls.
func (c *Config) CallInterval() time.Duration {
	return time.Duration(c.CallIntervalSeconds) * time.Second
}

// FileExists is a small helper for callers deciding whether to pass a
// default config path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package schedule gates full sync runs behind a cooldown, so overlapping
// cron triggers never race on the same state file.
//
// The gate persists the start time of the last run in a small timestamp file.
// A run proceeds only if the configured minimum interval has elapsed since
// that recorded start; otherwise the caller exits immediately with a
// "skipped" result.
package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Gate decides whether enough time has passed since the last run.
type Gate struct {
	path     string
	cooldown time.Duration
}

// NewGate builds a gate over the given timestamp file. A cooldown <= 0
// disables gating entirely.
func NewGate(path string, cooldown time.Duration) *Gate {
	return &Gate{path: path, cooldown: cooldown}
}

// ShouldRun reports whether a run starting at now may proceed. A missing or
// unreadable timestamp file permits the run; refusing to sync because a
// bookkeeping file is broken would be backwards.
func (g *Gate) ShouldRun(now time.Time) bool {
	if g.cooldown <= 0 {
		return true
	}

	last, ok := g.lastRun()
	if !ok {
		return true
	}
	return now.Sub(last) > g.cooldown
}

// MarkRun records now as the start of a run.
func (g *Gate) MarkRun(now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return fmt.Errorf("creating last-run directory: %w", err)
	}
	if err := os.WriteFile(g.path, []byte(now.UTC().Format(time.RFC3339)), 0644); err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// LastRun returns the recorded start of the previous run, if any.
func (g *Gate) LastRun() (time.Time, bool) {
	return g.lastRun()
}

func (g *Gate) lastRun() (time.Time, bool) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

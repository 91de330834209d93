package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func gateWithLastRun(t *testing.T, last time.Time, cooldown time.Duration) *Gate {
	t.Helper()
	path := filepath.Join(t.TempDir(), "last_run")
	g := NewGate(path, cooldown)
	if err := g.MarkRun(last); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestShouldRunCooldownActive(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	g := gateWithLastRun(t, now.Add(-5*time.Minute), 60*time.Minute)

	if g.ShouldRun(now) {
		t.Error("run 5 minutes after last start must be gated by a 60 minute cooldown")
	}
}

func TestShouldRunCooldownElapsed(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	g := gateWithLastRun(t, now.Add(-61*time.Minute), 60*time.Minute)

	if !g.ShouldRun(now) {
		t.Error("run 61 minutes after last start must proceed with a 60 minute cooldown")
	}
}

func TestShouldRunNoRecord(t *testing.T) {
	g := NewGate(filepath.Join(t.TempDir(), "last_run"), time.Hour)
	if !g.ShouldRun(time.Now()) {
		t.Error("first run must proceed")
	}
}

func TestShouldRunUnparseableRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run")
	if err := os.WriteFile(path, []byte("not a timestamp"), 0644); err != nil {
		t.Fatal(err)
	}

	g := NewGate(path, time.Hour)
	if !g.ShouldRun(time.Now()) {
		t.Error("broken timestamp file must not block runs")
	}
}

func TestShouldRunDisabledCooldown(t *testing.T) {
	now := time.Now()
	g := gateWithLastRun(t, now, 0)
	if !g.ShouldRun(now) {
		t.Error("zero cooldown disables gating")
	}
}

func TestMarkRunRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last_run")
	g := NewGate(path, time.Hour)

	start := time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)
	if err := g.MarkRun(start); err != nil {
		t.Fatal(err)
	}

	got, ok := g.LastRun()
	if !ok {
		t.Fatal("expected recorded run")
	}
	if !got.Equal(start) {
		t.Errorf("LastRun = %v, want %v", got, start)
	}
}

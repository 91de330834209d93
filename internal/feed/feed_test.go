package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFeed(t, `[
		{"title": "AJ McQueen", "venue": "Conduit", "date": "2025-08-20", "time": "19:00", "source_url": "https://conduitfl.com/e/1"},
		{"title": "Horror Trivia Night", "venue": "Will's Pub", "date": "2025-08-21"}
	]`)

	events, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "AJ McQueen" || events[0].Venue != "Conduit" {
		t.Errorf("unexpected first record: %+v", events[0])
	}
}

func TestLoadRejectsIncompleteRecords(t *testing.T) {
	path := writeFeed(t, `[{"title": "No Venue", "date": "2025-08-20"}]`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for record without venue")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeFeed(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

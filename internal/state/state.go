package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SchemaVersion is bumped whenever the on-disk entry shape changes, so a
// format evolution fails loudly instead of silently corrupting state.
const SchemaVersion = 1

// Status is the lifecycle state of a fingerprint.
// Unseen → pending → submitted → orphaned → submitted again, or
// removed_duplicate (terminal, deleted during cleanup).
type Status string

const (
	StatusPending          Status = "pending"
	StatusSubmitted        Status = "submitted"
	StatusOrphaned         Status = "orphaned"
	StatusRemovedDuplicate Status = "removed_duplicate"
)

// Entry tracks one fingerprint's submission state.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	RemoteID    int       `json:"remote_id,omitempty"`
	Status      Status    `json:"status"`
	LastSeen    time.Time `json:"last_seen"`
	Source      string    `json:"source,omitempty"`
	Title       string    `json:"title,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	Date        string    `json:"date,omitempty"`
}

// CorruptionError reports an unreadable or malformed state file. It is
// recoverable: the caller logs it and proceeds with an empty store.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("state file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// fileSchema is the on-disk shape of the store.
type fileSchema struct {
	SchemaVersion int               `json:"schema_version"`
	UpdatedAt     string            `json:"updated_at"`
	Entries       map[string]*Entry `json:"entries"`
}

// Store is the in-memory view of the state file. It is only ever accessed by
// the single process running a sync pass, so no locking is needed.
type Store struct {
	path    string
	entries map[string]*Entry
}

// Open loads the state file at path. A missing file yields an empty store and
// no error. A corrupt or version-mismatched file yields an empty store AND a
// *CorruptionError so the caller can log it; the returned store is usable
// either way.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]*Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, &CorruptionError{Path: path, Err: err}
	}

	var fs fileSchema
	if err := json.Unmarshal(data, &fs); err != nil {
		return s, &CorruptionError{Path: path, Err: err}
	}
	if fs.SchemaVersion != SchemaVersion {
		return s, &CorruptionError{Path: path, Err: fmt.Errorf("unsupported schema version %d", fs.SchemaVersion)}
	}
	if fs.Entries != nil {
		s.entries = fs.Entries
	}

	return s, nil
}

// Get returns the entry for a fingerprint. Missing keys are not an error.
func (s *Store) Get(fingerprint string) (*Entry, bool) {
	e, ok := s.entries[fingerprint]
	return e, ok
}

// Mark upserts the entry for a fingerprint, overwriting status and last_seen.
func (s *Store) Mark(fingerprint string, e *Entry) {
	e.Fingerprint = fingerprint
	if e.LastSeen.IsZero() {
		e.LastSeen = time.Now().UTC()
	}
	s.entries[fingerprint] = e
}

// SetStatus updates the status (and optionally the remote id) of an existing
// entry, refreshing last_seen. It is a no-op for unknown fingerprints.
func (s *Store) SetStatus(fingerprint string, status Status, remoteID int) {
	e, ok := s.entries[fingerprint]
	if !ok {
		return
	}
	e.Status = status
	if remoteID != 0 {
		e.RemoteID = remoteID
	}
	e.LastSeen = time.Now().UTC()
}

// IsSubmitted reports whether a fingerprint is recorded as submitted.
func (s *Store) IsSubmitted(fingerprint string) bool {
	e, ok := s.entries[fingerprint]
	return ok && e.Status == StatusSubmitted
}

// Len returns the number of tracked fingerprints.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns all entries ordered by fingerprint for deterministic
// iteration.
func (s *Store) Entries() []*Entry {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.entries[k])
	}
	return out
}

// Flush writes the store to disk atomically: serialize to a temp file in the
// same directory, then rename over the target, so a crash never leaves a
// half-written state file.
func (s *Store) Flush() error {
	fs := fileSchema{
		SchemaVersion: SchemaVersion,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		Entries:       s.entries,
	}

	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing state file: %w", err)
	}

	return nil
}

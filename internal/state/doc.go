// Package state provides the durable fingerprint → submission-state map.
//
// The store is a single versioned JSON file loaded at process start and
// written atomically (temp file + rename) after every mutating batch, so a
// crash mid-run loses at most one batch. Entries are never deleted;
// superseded entries are overwritten in place. A corrupt file is not fatal:
// the store starts empty and ground truth is rebuilt from the remote index on
// the next reconciliation pass.
package state

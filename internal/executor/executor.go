// Package executor performs the actual remote mutations: rate-limited event
// creation, and destructive delete batches guarded by a canary protocol.
//
// For a delete batch, a small canary subset runs first. If every canary call
// fails the endpoint or the session is assumed broken and the remainder of
// the batch is never attempted: a batch-level failure is cheaper to recover
// from than dozens of blind per-item failures against a misbehaving server.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/orlandopunx/eventsync/internal/gancio"
)

// DefaultCanarySize is how many deletions are attempted before committing to
// the rest of a destructive batch.
const DefaultCanarySize = 3

// DefaultCallInterval spaces remote calls so batch runs never hammer the
// server. The remote store's behavior under concurrent writes is unverified,
// so calls stay strictly sequential.
const DefaultCallInterval = 2 * time.Second

// ErrCanaryFailed reports that every canary deletion failed and the batch was
// aborted before touching the remaining items.
var ErrCanaryFailed = errors.New("all canary deletions failed, batch aborted")

// RemoteAPI is the mutating surface of the remote calendar client.
type RemoteAPI interface {
	CreateEvent(ev *gancio.NewEvent) (*gancio.RemoteEvent, error)
	DeleteEvent(id int) error
}

// Result records the outcome of one remote call.
type Result struct {
	RemoteID int    `json:"remote_id,omitempty"`
	Title    string `json:"title,omitempty"`
	OK       bool   `json:"ok"`
	Err      string `json:"error,omitempty"`
}

// BatchResult aggregates a delete batch.
type BatchResult struct {
	Results   []Result `json:"results"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"` // never attempted due to canary abort
	Aborted   bool     `json:"aborted"`
}

// DeleteTarget identifies one remote event scheduled for deletion.
type DeleteTarget struct {
	ID    int
	Title string
}

// Executor serializes remote mutations behind a rate limiter.
type Executor struct {
	api        RemoteAPI
	limiter    *rate.Limiter
	canarySize int
}

// New builds an executor. interval <= 0 disables rate limiting (used in
// tests); canarySize <= 0 selects the default.
func New(api RemoteAPI, interval time.Duration, canarySize int) *Executor {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if canarySize <= 0 {
		canarySize = DefaultCanarySize
	}
	return &Executor{
		api:        api,
		limiter:    rate.NewLimiter(limit, 1),
		canarySize: canarySize,
	}
}

// Create submits one event, honoring the rate limit.
func (e *Executor) Create(ctx context.Context, ev *gancio.NewEvent) (*gancio.RemoteEvent, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return e.api.CreateEvent(ev)
}

// DeleteBatch deletes the targets in order with the canary protocol. Targets
// must already be ordered (ascending remote id within each cluster, keeper
// excluded). Individual failures are recorded and do not stop the batch; only
// a fully failed canary aborts it.
func (e *Executor) DeleteBatch(ctx context.Context, targets []DeleteTarget) (*BatchResult, error) {
	br := &BatchResult{}
	if len(targets) == 0 {
		return br, nil
	}

	canary := len(targets)
	if canary > e.canarySize {
		canary = e.canarySize
	}

	for _, t := range targets[:canary] {
		e.deleteOne(ctx, t, br)
	}

	if br.Succeeded == 0 {
		br.Aborted = true
		br.Skipped = len(targets) - canary
		return br, ErrCanaryFailed
	}

	for _, t := range targets[canary:] {
		e.deleteOne(ctx, t, br)
	}

	return br, nil
}

func (e *Executor) deleteOne(ctx context.Context, t DeleteTarget, br *BatchResult) {
	res := Result{RemoteID: t.ID, Title: t.Title}

	if err := e.limiter.Wait(ctx); err != nil {
		res.Err = err.Error()
	} else if err := e.api.DeleteEvent(t.ID); err != nil {
		res.Err = err.Error()
	} else {
		res.OK = true
	}

	if res.OK {
		br.Succeeded++
	} else {
		br.Failed++
	}
	br.Results = append(br.Results, res)
}

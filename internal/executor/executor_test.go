package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orlandopunx/eventsync/internal/gancio"
)

type fakeAPI struct {
	created    []*gancio.NewEvent
	deleted    []int
	failAll    bool
	failIDs    map[int]bool
	nextRemote int
}

func (f *fakeAPI) CreateEvent(ev *gancio.NewEvent) (*gancio.RemoteEvent, error) {
	if f.failAll {
		return nil, &gancio.APIError{Op: "create event", StatusCode: 500}
	}
	f.created = append(f.created, ev)
	f.nextRemote++
	return &gancio.RemoteEvent{ID: f.nextRemote, Title: ev.Title}, nil
}

func (f *fakeAPI) DeleteEvent(id int) error {
	if f.failAll || f.failIDs[id] {
		return &gancio.APIError{Op: "delete event", StatusCode: 500}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func targets(ids ...int) []DeleteTarget {
	ts := make([]DeleteTarget, 0, len(ids))
	for _, id := range ids {
		ts = append(ts, DeleteTarget{ID: id})
	}
	return ts
}

func TestCreate(t *testing.T) {
	api := &fakeAPI{}
	e := New(api, 0, 0)

	created, err := e.Create(context.Background(), &gancio.NewEvent{Title: "New Show"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Len(t, api.created, 1)
}

func TestDeleteBatchAllSucceed(t *testing.T) {
	api := &fakeAPI{}
	e := New(api, 0, 3)

	br, err := e.DeleteBatch(context.Background(), targets(12, 45, 99, 120))
	require.NoError(t, err)
	assert.Equal(t, 4, br.Succeeded)
	assert.Equal(t, 0, br.Failed)
	assert.False(t, br.Aborted)
	assert.Equal(t, []int{12, 45, 99, 120}, api.deleted, "deletions must run in given order")
}

func TestCanaryAbortSkipsRemainder(t *testing.T) {
	// A batch of 50 where everything fails: the 3 canaries fail, the other
	// 47 are never attempted, and a batch-level error is reported.
	api := &fakeAPI{failAll: true}
	e := New(api, 0, 3)

	ids := make([]int, 50)
	for i := range ids {
		ids[i] = i + 1
	}

	br, err := e.DeleteBatch(context.Background(), targets(ids...))
	require.ErrorIs(t, err, ErrCanaryFailed)
	assert.True(t, br.Aborted)
	assert.Equal(t, 3, br.Failed)
	assert.Equal(t, 47, br.Skipped)
	assert.Len(t, br.Results, 3)
}

func TestCanaryPartialSuccessProceeds(t *testing.T) {
	// One canary succeeding is enough evidence the endpoint works; per-item
	// failures after that are non-fatal.
	api := &fakeAPI{failIDs: map[int]bool{1: true, 2: true, 5: true}}
	e := New(api, 0, 3)

	br, err := e.DeleteBatch(context.Background(), targets(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.False(t, br.Aborted)
	assert.Equal(t, 3, br.Succeeded)
	assert.Equal(t, 3, br.Failed)
	assert.Equal(t, 0, br.Skipped)
	assert.Len(t, br.Results, 6)
}

func TestDeleteBatchEmpty(t *testing.T) {
	e := New(&fakeAPI{}, 0, 3)
	br, err := e.DeleteBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, br.Results)
}

func TestDeleteBatchSmallerThanCanary(t *testing.T) {
	api := &fakeAPI{}
	e := New(api, 0, 3)

	br, err := e.DeleteBatch(context.Background(), targets(7, 8))
	require.NoError(t, err)
	assert.Equal(t, 2, br.Succeeded)
	assert.False(t, br.Aborted)
}

func TestCreateFailurePropagates(t *testing.T) {
	api := &fakeAPI{failAll: true}
	e := New(api, 0, 0)

	_, err := e.Create(context.Background(), &gancio.NewEvent{Title: "Broken"})
	var apiErr *gancio.APIError
	require.True(t, errors.As(err, &apiErr))
}

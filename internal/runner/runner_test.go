package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orlandopunx/eventsync/internal/event"
	"github.com/orlandopunx/eventsync/internal/executor"
	"github.com/orlandopunx/eventsync/internal/gancio"
	"github.com/orlandopunx/eventsync/internal/logger"
	"github.com/orlandopunx/eventsync/internal/schedule"
	"github.com/orlandopunx/eventsync/internal/similarity"
	"github.com/orlandopunx/eventsync/internal/state"
	"github.com/orlandopunx/eventsync/internal/venue"
)

// 2025-08-20T00:00:00Z
const aug20 = int64(1755648000)

var testNow = time.Date(2025, 8, 19, 12, 0, 0, 0, time.UTC)

// fakeRemote is an in-memory stand-in for the Gancio client.
type fakeRemote struct {
	events     []gancio.RemoteEvent
	nextID     int
	created    []*gancio.NewEvent
	deleted    []int
	createErr  error
	createNoID bool
	deleteErr  error
	deleteFail map[int]bool
}

func (f *fakeRemote) ListEvents() ([]gancio.RemoteEvent, error) {
	return f.events, nil
}

func (f *fakeRemote) CreateEvent(ev *gancio.NewEvent) (*gancio.RemoteEvent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	f.created = append(f.created, ev)
	if f.createNoID {
		return &gancio.RemoteEvent{Title: ev.Title, StartDatetime: ev.StartDatetime}, nil
	}
	return &gancio.RemoteEvent{ID: 1000 + f.nextID, Title: ev.Title, StartDatetime: ev.StartDatetime}, nil
}

func (f *fakeRemote) DeleteEvent(id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.deleteFail[id] {
		return fmt.Errorf("delete %d refused", id)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestRunner(t *testing.T, remote *fakeRemote) (*Runner, string) {
	t.Helper()

	statePath := filepath.Join(t.TempDir(), "sync_state.json")
	store, err := state.Open(statePath)
	require.NoError(t, err)

	return &Runner{
		Log:      logger.New(logger.LevelError, os.Stderr),
		Store:    store,
		Venues:   venue.NewResolver(venue.DefaultTable()),
		Lister:   remote,
		Exec:     executor.New(remote, 0, 3),
		Strategy: similarity.SequenceRatio{},
	}, statePath
}

func TestSyncSubmitsNewEvent(t *testing.T) {
	remote := &fakeRemote{}
	r, statePath := newTestRunner(t, remote)

	events := []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Will's Pub", Date: "2025-08-20", Time: "20:00"},
	}

	sum, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow, Source: "songkick"})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Submitted)
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, remote.created, 1)
	assert.Equal(t, 1, remote.created[0].PlaceID, "Will's Pub resolves to place 1")

	// State survived the flush with the remote id attached.
	reopened, err := state.Open(statePath)
	require.NoError(t, err)
	fp := event.NewIdentity(events[0], "Will's Pub").Fingerprint()
	entry, ok := reopened.Get(fp)
	require.True(t, ok)
	assert.Equal(t, state.StatusSubmitted, entry.Status)
	assert.Equal(t, 1001, entry.RemoteID)
	assert.Equal(t, "songkick", entry.Source)
}

func TestSyncDryRunNeverMutates(t *testing.T) {
	remote := &fakeRemote{}
	r, statePath := newTestRunner(t, remote)

	events := []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Will's Pub", Date: "2025-08-20"},
	}

	sum, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Submitted, "dry run still counts the would-be submission")
	assert.Empty(t, remote.created)
	_, statErr := os.Stat(statePath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not flush state")
}

func TestSyncSkipsExactDuplicate(t *testing.T) {
	remote := &fakeRemote{
		events: []gancio.RemoteEvent{
			{ID: 42, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
		},
	}
	r, _ := newTestRunner(t, remote)

	sum, err := r.Sync(context.Background(), []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Wills Pub", Date: "2025-08-20"},
	}, SyncOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Submitted)
	assert.Equal(t, 1, sum.SkippedExact)
	assert.Empty(t, remote.created)
	require.Len(t, sum.Items, 1)
	assert.Equal(t, 42, sum.Items[0].RemoteID)
}

func TestSyncSkipsUnresolvedVenue(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestRunner(t, remote)

	sum, err := r.Sync(context.Background(), []event.RawEvent{
		{Title: "Mystery Show", Venue: "Some Unknown Basement", Date: "2025-08-20"},
	}, SyncOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.SkippedUnresolvedVenue)
	assert.Equal(t, 0, sum.Submitted)
	assert.Empty(t, remote.created, "unresolved venues are never defaulted")
}

func TestSyncFilterDropsPastEvents(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestRunner(t, remote)

	sum, err := r.Sync(context.Background(), []event.RawEvent{
		{Title: "Old Show", Venue: "Will's Pub", Date: "2025-08-01"},
		{Title: "New Show", Venue: "Will's Pub", Date: "2025-08-20"},
	}, SyncOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.SkippedPast)
	assert.Equal(t, 1, sum.Submitted)
}

func TestSyncFailedCreateStaysPending(t *testing.T) {
	remote := &fakeRemote{createErr: fmt.Errorf("server exploded")}
	r, statePath := newTestRunner(t, remote)

	events := []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Will's Pub", Date: "2025-08-20"},
	}

	sum, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow})
	require.NoError(t, err, "per-item failures never fail the run")
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Submitted)

	reopened, err := state.Open(statePath)
	require.NoError(t, err)
	fp := event.NewIdentity(events[0], "Will's Pub").Fingerprint()
	entry, ok := reopened.Get(fp)
	require.True(t, ok)
	assert.Equal(t, state.StatusPending, entry.Status)
}

func TestSyncCooldownGate(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestRunner(t, remote)

	gatePath := filepath.Join(t.TempDir(), "last_run")
	r.Gate = schedule.NewGate(gatePath, time.Hour)
	require.NoError(t, r.Gate.MarkRun(testNow.Add(-10*time.Minute)))

	events := []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Will's Pub", Date: "2025-08-20"},
	}

	_, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow})
	assert.ErrorIs(t, err, ErrCooldownActive)
	assert.Empty(t, remote.created)

	// Force bypasses the gate.
	sum, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Submitted)
}

func TestCleanupPreviewDoesNotDelete(t *testing.T) {
	remote := &fakeRemote{
		events: []gancio.RemoteEvent{
			{ID: 12, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
			{ID: 3, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
			{ID: 7, Title: "Unrelated Show", StartDatetime: aug20, Place: gancio.Place{ID: 5, Name: "Conduit"}},
		},
	}
	r, _ := newTestRunner(t, remote)

	sum, err := r.Cleanup(context.Background(), CleanupOptions{Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Clusters)
	assert.Equal(t, 1, sum.ToDelete)
	assert.Equal(t, 0, sum.Deleted)
	assert.Empty(t, remote.deleted)
	require.NotNil(t, sum.Plan)
	assert.Equal(t, 3, sum.Plan.Clusters[0].Keeper.Event.ID, "lowest id is the keeper")
}

func TestCleanupExecuteDeletesExtrasAndMarksState(t *testing.T) {
	remote := &fakeRemote{
		events: []gancio.RemoteEvent{
			{ID: 12, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
			{ID: 3, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
			{ID: 45, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
		},
	}
	r, statePath := newTestRunner(t, remote)

	// Local state tracks one of the duplicates and one vanished remote id.
	fp := event.Identity{Title: "laserdisc party", Venue: "Will's Pub", Date: "2025-08-20"}.Fingerprint()
	r.Store.Mark(fp, &state.Entry{Status: state.StatusSubmitted, RemoteID: 45})
	r.Store.Mark("gone-fingerprint", &state.Entry{Status: state.StatusSubmitted, RemoteID: 999})

	sum, err := r.Cleanup(context.Background(), CleanupOptions{Now: testNow, Execute: true})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Deleted)
	assert.ElementsMatch(t, []int{12, 45}, remote.deleted, "keeper 3 survives")
	assert.Equal(t, 1, sum.OrphansMarked)

	reopened, err := state.Open(statePath)
	require.NoError(t, err)
	entry, ok := reopened.Get(fp)
	require.True(t, ok)
	assert.Equal(t, state.StatusRemovedDuplicate, entry.Status)
	gone, ok := reopened.Get("gone-fingerprint")
	require.True(t, ok)
	assert.Equal(t, state.StatusOrphaned, gone.Status)
}

func TestSyncCreateWithoutIDStaysPending(t *testing.T) {
	remote := &fakeRemote{createNoID: true}
	r, statePath := newTestRunner(t, remote)

	events := []event.RawEvent{
		{Title: "Laserdisc Party", Venue: "Will's Pub", Date: "2025-08-20"},
	}

	sum, err := r.Sync(context.Background(), events, SyncOptions{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Submitted)
	require.Len(t, remote.created, 1)

	// Without a remote id the entry cannot be marked submitted; the orphan
	// sweep would never see it again.
	reopened, err := state.Open(statePath)
	require.NoError(t, err)
	fp := event.NewIdentity(events[0], "Will's Pub").Fingerprint()
	entry, ok := reopened.Get(fp)
	require.True(t, ok)
	assert.Equal(t, state.StatusPending, entry.Status)
	assert.Equal(t, 0, entry.RemoteID)
}

func TestCleanupExecuteEmptyPlanStillMarksOrphans(t *testing.T) {
	remote := &fakeRemote{
		events: []gancio.RemoteEvent{
			{ID: 7, Title: "Unrelated Show", StartDatetime: aug20, Place: gancio.Place{ID: 5, Name: "Conduit"}},
		},
	}
	r, statePath := newTestRunner(t, remote)
	r.Store.Mark("gone-fingerprint", &state.Entry{Status: state.StatusSubmitted, RemoteID: 999})

	sum, err := r.Cleanup(context.Background(), CleanupOptions{Now: testNow, Execute: true})
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Clusters)
	assert.Equal(t, 0, sum.Deleted)
	assert.Equal(t, 1, sum.OrphansMarked)

	reopened, err := state.Open(statePath)
	require.NoError(t, err)
	gone, ok := reopened.Get("gone-fingerprint")
	require.True(t, ok)
	assert.Equal(t, state.StatusOrphaned, gone.Status)
}

func TestCleanupPassExecutesConfirmedPlan(t *testing.T) {
	remote := &fakeRemote{
		events: []gancio.RemoteEvent{
			{ID: 3, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
			{ID: 12, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"}},
		},
	}
	r, _ := newTestRunner(t, remote)

	pass, err := r.PlanCleanup(testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, pass.Summary().ToDelete)

	// The remote grows another duplicate between plan and execution; only
	// the planned deletion runs.
	remote.events = append(remote.events, gancio.RemoteEvent{
		ID: 45, Title: "Laserdisc Party", StartDatetime: aug20, Place: gancio.Place{ID: 1, Name: "Will's Pub"},
	})

	sum, err := pass.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Deleted)
	assert.Equal(t, []int{12}, remote.deleted)
}

func TestCleanupCanaryAbort(t *testing.T) {
	var events []gancio.RemoteEvent
	for i := 1; i <= 10; i++ {
		events = append(events, gancio.RemoteEvent{
			ID: i, Title: "Laserdisc Party", StartDatetime: aug20,
			Place: gancio.Place{ID: 1, Name: "Will's Pub"},
		})
	}
	remote := &fakeRemote{events: events, deleteErr: fmt.Errorf("forbidden")}
	r, _ := newTestRunner(t, remote)

	sum, err := r.Cleanup(context.Background(), CleanupOptions{Now: testNow, Execute: true})
	assert.ErrorIs(t, err, executor.ErrCanaryFailed)
	assert.True(t, sum.Aborted)
	assert.Equal(t, 3, sum.DeleteFailed)
	assert.Equal(t, 6, sum.SkippedAfterAbort)
}

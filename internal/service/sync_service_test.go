package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/netmon"
	"github.com/alexanderramin/timeclock/internal/remote"
	"github.com/alexanderramin/timeclock/internal/repository"
	"github.com/alexanderramin/timeclock/internal/service"
	"github.com/alexanderramin/timeclock/internal/testutil"
)

type syncHarness struct {
	entries *repository.SQLiteTimeEntryRepo
	queue   *repository.SQLiteQueueRepo
	remote  *testutil.FakeRemote
	monitor *netmon.Monitor
	sync    service.SyncService
}

func newSyncHarness(t *testing.T) *syncHarness {
	t.Helper()
	database := testutil.NewTestDB(t)
	h := &syncHarness{
		entries: repository.NewSQLiteTimeEntryRepo(database),
		queue:   repository.NewSQLiteQueueRepo(database),
		remote:  testutil.NewFakeRemote(),
		monitor: netmon.NewMonitor(nil, time.Hour),
	}
	h.sync = service.NewSyncService(h.queue, h.entries, h.remote, h.monitor, testutil.NewTestUoW(database), time.Hour)
	return h
}

func (h *syncHarness) seedEntry(t *testing.T, userID string) *domain.TimeEntry {
	t.Helper()
	entry := testutil.NewTestEntry(userID)
	require.NoError(t, h.entries.Create(context.Background(), entry))
	return entry
}

func clockInOp(entry *domain.TimeEntry) *domain.QueueOperation {
	return testutil.NewTestOp(domain.OpClockIn, entry.LocalID, domain.ClockInPayload{
		UserID:    entry.UserID,
		ClockInAt: entry.ClockInAt,
	})
}

func clockOutOp(entry *domain.TimeEntry, at time.Time) *domain.QueueOperation {
	return testutil.NewTestOp(domain.OpClockOut, entry.LocalID, domain.ClockOutPayload{
		ClockOutAt: at,
		BreakMin:   15,
	})
}

func TestSubmit_OnlineAppliesDirectly(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	assert.Equal(t, 1, h.remote.CreateCount())
	pending, err := h.queue.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending, "direct success must not queue")

	stored, err := h.entries.GetByLocalID(ctx, entry.LocalID)
	require.NoError(t, err)
	require.NotNil(t, stored.RemoteID)
	assert.Equal(t, "remote-1", *stored.RemoteID)
}

func TestSubmit_OfflineQueuesWithoutRemoteCall(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")
	h.monitor.SetConnected(false)

	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	assert.Zero(t, h.remote.CreateCount())
	pending, err := h.queue.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestSubmit_OnlineFailureFallsBackToQueue(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")
	h.remote.CreateErrs = []error{remote.ErrUnavailable}

	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	ops, err := h.queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, 1, ops[0].AttemptCount, "failed direct attempt counts")
	require.NotNil(t, ops[0].LastError)
}

func TestDrain_OfflineIsNoop(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")
	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Applied)
	assert.Zero(t, h.remote.CreateCount())
}

func TestDrain_AppliesInOrderAndResolvesRemoteID(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))
	require.NoError(t, h.sync.Submit(ctx, clockOutOp(entry, time.Now().UTC())))
	h.monitor.SetConnected(true)

	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	require.Equal(t, 1, h.remote.CreateCount())
	require.Equal(t, 1, h.remote.ClockOutCount())
	assert.Equal(t, "remote-1", h.remote.ClockOutCalls[0].RemoteID,
		"clock-out must target the ID minted by the drained clock-in")

	pending, err := h.queue.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestDrain_TransientFailureBlocksDependentOps(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))
	require.NoError(t, h.sync.Submit(ctx, clockOutOp(entry, time.Now().UTC())))
	h.monitor.SetConnected(true)

	// The clock-in fails on two consecutive passes before succeeding.
	h.remote.CreateErrs = []error{remote.ErrUnavailable, remote.ErrUnavailable}

	for attempt := 1; attempt <= 2; attempt++ {
		res, err := h.sync.Drain(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Errors)
		assert.Equal(t, 1, res.Skipped)
		assert.Zero(t, h.remote.ClockOutCount(), "clock-out must never run before its clock-in")

		ops, err := h.queue.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, ops, 2)
		assert.Equal(t, attempt, ops[0].AttemptCount)
	}

	// Third pass succeeds end to end.
	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, h.remote.ClockOutCount())
}

func TestDrain_IndependentEntriesNotBlocked(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	first := h.seedEntry(t, "user-1")
	second := h.seedEntry(t, "user-2")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(first)))
	require.NoError(t, h.sync.Submit(ctx, clockInOp(second)))
	h.monitor.SetConnected(true)

	h.remote.CreateErrs = []error{remote.ErrUnavailable}

	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.Applied, "an unrelated entry keeps draining")
}

func TestDrain_RejectionMarksFailedAndNeverRetries(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))
	h.monitor.SetConnected(true)

	h.remote.CreateErrs = []error{remote.ErrRejected}

	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)

	pending, err := h.queue.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	failed, err := h.queue.FailedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, failed, "rejected operations are kept for review")

	calls := h.remote.CreateCount()
	_, err = h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls, h.remote.CreateCount(), "failed operations are not retried")
}

func TestDrain_UnresolvedRemoteIDSkipsWithoutError(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	// A clock-out whose clock-in never drained has no remote target yet.
	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockOutOp(entry, time.Now().UTC())))
	h.monitor.SetConnected(true)

	res, err := h.sync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Errors)

	ops, err := h.queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Zero(t, ops[0].AttemptCount, "waiting on a dependency is not an attempt")
}

// blockingClient parks CreateClockIn until released so a drain pass can
// be held open.
type blockingClient struct {
	entered chan struct{}
	release chan struct{}
	inner   remote.Client
}

func (c *blockingClient) CreateClockIn(ctx context.Context, req remote.ClockInRequest) (string, error) {
	c.entered <- struct{}{}
	<-c.release
	return c.inner.CreateClockIn(ctx, req)
}

func (c *blockingClient) ApplyClockOut(ctx context.Context, remoteID string, req remote.ClockOutRequest) error {
	return c.inner.ApplyClockOut(ctx, remoteID, req)
}

func (c *blockingClient) Ping(ctx context.Context) bool { return c.inner.Ping(ctx) }

func TestDrain_ConcurrentCallIsNoop(t *testing.T) {
	database := testutil.NewTestDB(t)
	entries := repository.NewSQLiteTimeEntryRepo(database)
	queue := repository.NewSQLiteQueueRepo(database)
	monitor := netmon.NewMonitor(nil, time.Hour)
	client := &blockingClient{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		inner:   testutil.NewFakeRemote(),
	}
	svc := service.NewSyncService(queue, entries, client, monitor, testutil.NewTestUoW(database), time.Hour)

	ctx := context.Background()
	entry := testutil.NewTestEntry("user-1")
	require.NoError(t, entries.Create(ctx, entry))
	monitor.SetConnected(false)
	require.NoError(t, svc.Submit(ctx, clockInOp(entry)))
	monitor.SetConnected(true)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstRes service.DrainResult
	go func() {
		defer wg.Done()
		firstRes, _ = svc.Drain(ctx)
	}()

	<-client.entered // first pass is now mid-flight

	secondRes, err := svc.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, secondRes.Applied, "concurrent drain must be a no-op")

	close(client.release)
	wg.Wait()
	assert.Equal(t, 1, firstRes.Applied)
}

func TestStatus_ReflectsQueueAndConnectivity(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	status, err := h.sync.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Pending)
	assert.Zero(t, status.Failed)
	assert.False(t, status.Online)
	assert.False(t, status.Draining)
}

func TestAutoDrain_TriggersOnOnlineEdge(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()
	entry := h.seedEntry(t, "user-1")

	h.monitor.SetConnected(false)
	require.NoError(t, h.sync.Submit(ctx, clockInOp(entry)))

	h.sync.StartAutoDrain()
	defer h.sync.StopAutoDrain()

	h.monitor.SetConnected(true)

	require.Eventually(t, func() bool {
		pending, err := h.queue.PendingCount(ctx)
		return err == nil && pending == 0
	}, 2*time.Second, 10*time.Millisecond, "online edge should trigger a drain")
	assert.Equal(t, 1, h.remote.CreateCount())
}

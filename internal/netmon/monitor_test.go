package netmon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestOnline_OptimisticWhenReachabilityUnknown(t *testing.T) {
	m := NewMonitor(nil, time.Hour)
	assert.True(t, m.Online(), "unknown reachability counts as reachable")
}

func TestOnline_RequiresLinkLayer(t *testing.T) {
	m := NewMonitor(nil, time.Hour)
	m.SetConnected(false)
	assert.False(t, m.Online())

	// Even a positive reachability verdict cannot override a dead link.
	m.SetReachable(boolPtr(true))
	assert.False(t, m.Online())
}

func TestOnline_ReachabilityVerdict(t *testing.T) {
	m := NewMonitor(nil, time.Hour)

	m.SetReachable(boolPtr(false))
	assert.False(t, m.Online())

	m.SetReachable(boolPtr(true))
	assert.True(t, m.Online())

	m.SetReachable(nil)
	assert.True(t, m.Online(), "resetting to unknown restores optimism")
}

func TestSubscribe_ReceivesEdges(t *testing.T) {
	m := NewMonitor(nil, time.Hour)
	ch := m.Subscribe()

	m.SetReachable(boolPtr(false))
	select {
	case online := <-ch:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected offline edge")
	}

	m.SetReachable(boolPtr(true))
	select {
	case online := <-ch:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected online edge")
	}
}

func TestSubscribe_NoEventWithoutEdge(t *testing.T) {
	m := NewMonitor(nil, time.Hour)
	ch := m.Subscribe()

	// Already online; a confirming verdict is not an edge.
	m.SetReachable(boolPtr(true))

	select {
	case <-ch:
		t.Fatal("no edge expected for unchanged online state")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_SlowConsumerSeesLatestEdge(t *testing.T) {
	m := NewMonitor(nil, time.Hour)
	ch := m.Subscribe()

	m.SetReachable(boolPtr(false))
	m.SetReachable(boolPtr(true)) // overwrites the unconsumed offline edge

	select {
	case online := <-ch:
		assert.True(t, online, "latest edge wins")
	case <-time.After(time.Second):
		t.Fatal("expected an edge")
	}
}

func TestProbeLoop_UpdatesReachability(t *testing.T) {
	var verdict atomic.Bool
	probe := func(ctx context.Context) bool { return verdict.Load() }

	m := NewMonitor(probe, 10*time.Millisecond)
	ch := m.Subscribe()
	m.Start()
	defer m.Close()

	// First probe reports unreachable.
	select {
	case online := <-ch:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected offline edge from first probe")
	}

	verdict.Store(true)
	select {
	case online := <-ch:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected online edge after probe recovery")
	}
}

func TestStart_Idempotent(t *testing.T) {
	m := NewMonitor(func(ctx context.Context) bool { return true }, time.Hour)
	m.Start()
	m.Start()
	m.Close()
	m.Close()
}

func TestProbeLoop_StopsOnClose(t *testing.T) {
	var calls atomic.Int32
	m := NewMonitor(func(ctx context.Context) bool {
		calls.Add(1)
		return true
	}, 5*time.Millisecond)

	m.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	m.Close()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no probes after Close")
}

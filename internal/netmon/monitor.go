package netmon

import (
	"context"
	"sync"
	"time"
)

// ProbeFunc checks end-to-end reachability, typically the remote time
// store's health endpoint.
type ProbeFunc func(ctx context.Context) bool

// Monitor tracks connectivity for the sync layer. It keeps a link-layer
// connected flag (injected by the platform) and an end-to-end
// reachability verdict (probed). The derived online signal is
// optimistic: an unknown reachability verdict counts as reachable, so a
// monitor that cannot probe never starves the queue.
type Monitor struct {
	probe    ProbeFunc
	interval time.Duration

	mu        sync.Mutex
	connected bool
	reachable *bool
	subs      []chan bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor. The link layer starts out connected;
// reachability is unknown until the first probe completes.
func NewMonitor(probe ProbeFunc, interval time.Duration) *Monitor {
	return &Monitor{
		probe:     probe,
		interval:  interval,
		connected: true,
	}
}

// Online returns the derived connectivity signal:
// connected && (reachable ?? true).
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onlineLocked()
}

func (m *Monitor) onlineLocked() bool {
	if !m.connected {
		return false
	}
	if m.reachable == nil {
		return true
	}
	return *m.reachable
}

// Subscribe returns a channel that receives the new online value on
// every edge. The channel is buffered; a slow consumer misses
// intermediate edges but always observes the latest one eventually.
func (m *Monitor) Subscribe() <-chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan bool, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// SetConnected injects a link-layer connectivity change.
func (m *Monitor) SetConnected(connected bool) {
	m.mu.Lock()
	before := m.onlineLocked()
	m.connected = connected
	m.notifyLocked(before)
	m.mu.Unlock()
}

// SetReachable injects an end-to-end reachability verdict. A nil value
// resets reachability to unknown.
func (m *Monitor) SetReachable(reachable *bool) {
	m.mu.Lock()
	before := m.onlineLocked()
	m.reachable = reachable
	m.notifyLocked(before)
	m.mu.Unlock()
}

// Start launches the periodic reachability probe. A no-op when already
// running or when no probe is configured.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil || m.probe == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Close stops the probe loop.
func (m *Monitor) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Probe immediately so the first verdict does not wait a full
	// interval.
	m.probeOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(ctx)
		}
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	reachable := m.probe(ctx)
	if ctx.Err() != nil {
		return
	}
	m.SetReachable(&reachable)
}

// notifyLocked publishes the current online value to subscribers when
// it differs from before. Callers hold m.mu.
func (m *Monitor) notifyLocked(before bool) {
	now := m.onlineLocked()
	if now == before {
		return
	}
	for _, ch := range m.subs {
		select {
		case ch <- now:
		default:
			// Drain the stale edge and replace it with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- now:
			default:
			}
		}
	}
}

package location

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// SampleSink receives samples produced by the foreground polling loop.
type SampleSink func(sample domain.LocationSample)

// Poller runs the foreground sampling loop while an entry is active.
// Start and Stop are idempotent; starting a running poller is a no-op.
type Poller struct {
	provider Provider
	sink     SampleSink

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller that feeds samples from the provider into
// the sink.
func NewPoller(provider Provider, sink SampleSink) *Poller {
	return &Poller{provider: provider, sink: sink}
}

// Start begins polling at the given interval. A no-op if already running.
func (p *Poller) Start(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, interval, p.done)
}

// Stop halts polling and waits for the loop to exit. A no-op if not
// running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := p.provider.CurrentSample(ctx)
			if err != nil {
				// Sampling is best effort; the trail just gets a gap.
				continue
			}
			p.sink(*sample)
		}
	}
}

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/remote"
)

// ClockOutCall records one ApplyClockOut invocation on a FakeRemote.
type ClockOutCall struct {
	RemoteID string
	Req      remote.ClockOutRequest
}

// FakeRemote is a scriptable in-memory remote.Client. Error scripts are
// consumed one entry per call; a nil entry or an exhausted script means
// success. All calls are recorded.
type FakeRemote struct {
	mu sync.Mutex

	CreateErrs   []error
	ClockOutErrs []error
	PingResult   bool

	CreateCalls   []remote.ClockInRequest
	ClockOutCalls []ClockOutCall

	nextID int
}

func NewFakeRemote() *FakeRemote {
	return &FakeRemote{PingResult: true}
}

func (f *FakeRemote) CreateClockIn(_ context.Context, req remote.ClockInRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, req)
	if err := popErr(&f.CreateErrs); err != nil {
		return "", err
	}
	f.nextID++
	return fmt.Sprintf("remote-%d", f.nextID), nil
}

func (f *FakeRemote) ApplyClockOut(_ context.Context, remoteID string, req remote.ClockOutRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClockOutCalls = append(f.ClockOutCalls, ClockOutCall{RemoteID: remoteID, Req: req})
	return popErr(&f.ClockOutErrs)
}

func (f *FakeRemote) Ping(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingResult
}

// CreateCount returns the number of CreateClockIn calls so far.
func (f *FakeRemote) CreateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.CreateCalls)
}

// ClockOutCount returns the number of ApplyClockOut calls so far.
func (f *FakeRemote) ClockOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ClockOutCalls)
}

func popErr(script *[]error) error {
	if len(*script) == 0 {
		return nil
	}
	err := (*script)[0]
	*script = (*script)[1:]
	return err
}

// FakeProvider is an in-memory location.Provider returning a fixed
// sample or error.
type FakeProvider struct {
	mu     sync.Mutex
	Sample *domain.LocationSample
	Err    error
	calls  int
}

func (p *FakeProvider) CurrentSample(context.Context) (*domain.LocationSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return nil, p.Err
	}
	s := *p.Sample
	return &s, nil
}

func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// FakeTracker records background tracking lifecycle calls.
type FakeTracker struct {
	mu          sync.Mutex
	StartResult bool
	starts      int
	stops       int
}

func (t *FakeTracker) Start(context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.starts++
	return t.StartResult
}

func (t *FakeTracker) Stop(context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
}

func (t *FakeTracker) Starts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.starts
}

func (t *FakeTracker) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

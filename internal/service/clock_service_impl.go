package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/location"
	"github.com/alexanderramin/timeclock/internal/repository"
)

// locationFixTimeout bounds the on-demand fix taken at clock-in and
// clock-out. A slow or denied fix must not delay recording time.
const locationFixTimeout = 10 * time.Second

type clockService struct {
	entries   repository.TimeEntryRepo
	worksites repository.WorksiteRepo
	sync      SyncService
	provider  location.Provider
	tracker   location.BackgroundTracker
	poller    *location.Poller
	uow       db.UnitOfWork
	observer  UseCaseObserver

	userID       string
	pollInterval time.Duration

	now   func() time.Time
	newID func() string

	// mu serializes state transitions. The trail fields have their own
	// lock because the poller sink runs concurrently with transitions
	// that wait for the polling loop to stop.
	mu           sync.Mutex
	trailMu      sync.Mutex
	trailEntryID string
}

// NewClockService creates the local state machine for one user. A nil
// provider disables location capture entirely; a nil tracker is
// replaced with a no-op.
func NewClockService(
	entries repository.TimeEntryRepo,
	worksites repository.WorksiteRepo,
	syncSvc SyncService,
	provider location.Provider,
	tracker location.BackgroundTracker,
	uow db.UnitOfWork,
	userID string,
	pollInterval time.Duration,
	observers ...UseCaseObserver,
) ClockService {
	if tracker == nil {
		tracker = location.NoopTracker{}
	}
	s := &clockService{
		entries:      entries,
		worksites:    worksites,
		sync:         syncSvc,
		provider:     provider,
		tracker:      tracker,
		uow:          uow,
		observer:     useCaseObserverOrNoop(observers),
		userID:       userID,
		pollInterval: pollInterval,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	if provider != nil && pollInterval > 0 {
		s.poller = location.NewPoller(provider, s.recordSample)
	}
	return s
}

func (s *clockService) ClockIn(ctx context.Context, opts ClockInOptions) (entry *domain.TimeEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	defer func() { observe(ctx, s.observer, "clock.in", start, err, nil) }()

	if _, err := s.entries.GetActive(ctx, s.userID); err == nil {
		return nil, ErrAlreadyClockedIn
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Location is secondary metadata: a failed fix degrades to a
	// locationless entry instead of blocking the transition.
	loc := s.captureLocation(ctx, opts.SkipLocation)

	var validation *domain.GeofenceResult
	if opts.SiteID != "" {
		site, err := s.resolveSite(ctx, opts.SiteID)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			v := domain.ValidateGeofence(*loc, site.Latitude, site.Longitude, site.EffectiveRadius())
			validation = &v
		}
	}

	now := s.now()
	entry = domain.NewTimeEntry(s.newID(), s.userID, now, loc, validation)
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("storing time entry: %w", err)
	}

	payload, err := domain.EncodePayload(domain.ClockInPayload{
		UserID:     s.userID,
		ClockInAt:  now,
		Location:   loc,
		Validation: validation,
	})
	if err != nil {
		return nil, err
	}
	op := &domain.QueueOperation{
		Type:         domain.OpClockIn,
		LocalEntryID: entry.LocalID,
		Payload:      payload,
		Status:       domain.OpPending,
		CreatedAt:    now,
	}
	if err := s.sync.Submit(ctx, op); err != nil {
		return nil, err
	}

	s.setTrailEntry(entry.LocalID)
	s.tracker.Start(ctx)
	if s.poller != nil {
		s.poller.Start(s.pollInterval)
	}
	return entry, nil
}

func (s *clockService) StartBreak(ctx context.Context) (*domain.TimeEntry, error) {
	return s.transition(ctx, "break.start", func(e *domain.TimeEntry, now time.Time) error {
		return e.StartBreak(now)
	})
}

func (s *clockService) EndBreak(ctx context.Context) (*domain.TimeEntry, error) {
	return s.transition(ctx, "break.end", func(e *domain.TimeEntry, now time.Time) error {
		return e.EndBreak(now)
	})
}

func (s *clockService) ClockOut(ctx context.Context, opts ClockOutOptions) (entry *domain.TimeEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	defer func() { observe(ctx, s.observer, "clock.out", start, err, nil) }()

	entry, err = s.entries.GetActive(ctx, s.userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}

	// Halt the trail before closing so no sample lands after the entry
	// completes. Tracker stop is unconditional: it runs even when the
	// matching start reported failure, so background tracking can never
	// outlive the working interval.
	s.setTrailEntry("")
	if s.poller != nil {
		s.poller.Stop()
	}
	s.tracker.Stop(ctx)

	loc := s.captureLocation(ctx, opts.SkipLocation)

	now := s.now()
	if err := entry.Close(now, loc); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("storing time entry: %w", err)
	}
	// Close appended the fix to the in-memory trail; the samples table
	// needs the same append or a reload would drop it.
	if loc != nil {
		if err := s.entries.AppendSample(ctx, entry.LocalID, *loc); err != nil {
			return nil, fmt.Errorf("storing clock-out sample: %w", err)
		}
	}

	payload, err := domain.EncodePayload(domain.ClockOutPayload{
		ClockOutAt: now,
		BreakMin:   entry.BreakAccumulatedMin,
		Location:   loc,
		Note:       opts.Note,
	})
	if err != nil {
		return nil, err
	}
	op := &domain.QueueOperation{
		Type:         domain.OpClockOut,
		LocalEntryID: entry.LocalID,
		RemoteID:     entry.RemoteID,
		Payload:      payload,
		Status:       domain.OpPending,
		CreatedAt:    now,
	}
	if err := s.sync.Submit(ctx, op); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *clockService) Current(ctx context.Context) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetActive(ctx, s.userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}
	return entry, nil
}

func (s *clockService) History(ctx context.Context, limit int) ([]*domain.TimeEntry, error) {
	return s.entries.ListCompleted(ctx, s.userID, limit)
}

func (s *clockService) Reset(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	defer func() { observe(ctx, s.observer, "clock.reset", start, err, nil) }()

	s.setTrailEntry("")
	if s.poller != nil {
		s.poller.Stop()
	}
	s.tracker.Stop(ctx)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTimeEntryRepo(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return repository.NewSQLiteQueueRepo(tx).DeleteAll(ctx)
	})
}

// transition applies a break-style mutation to the open entry under the
// transition lock and persists the result.
func (s *clockService) transition(ctx context.Context, name string, fn func(*domain.TimeEntry, time.Time) error) (entry *domain.TimeEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	defer func() { observe(ctx, s.observer, name, start, err, nil) }()

	entry, err = s.entries.GetActive(ctx, s.userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}
	if err := fn(entry, s.now()); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("storing time entry: %w", err)
	}
	return entry, nil
}

func (s *clockService) captureLocation(ctx context.Context, skip bool) *domain.LocationSample {
	if skip || s.provider == nil {
		return nil
	}
	fixCtx, cancel := context.WithTimeout(ctx, locationFixTimeout)
	defer cancel()
	sample, err := s.provider.CurrentSample(fixCtx)
	if err != nil {
		return nil
	}
	return sample
}

func (s *clockService) resolveSite(ctx context.Context, idOrName string) (*domain.Worksite, error) {
	site, err := s.worksites.GetByID(ctx, idOrName)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	site, err = s.worksites.GetByName(ctx, idOrName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("worksite %q: %w", idOrName, repository.ErrNotFound)
		}
		return nil, err
	}
	return site, nil
}

// recordSample is the poller sink. It runs on the polling goroutine and
// must not take the transition lock.
func (s *clockService) recordSample(sample domain.LocationSample) {
	s.trailMu.Lock()
	localID := s.trailEntryID
	s.trailMu.Unlock()
	if localID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Best effort; a failed write leaves a gap in the trail.
	_ = s.entries.AppendSample(ctx, localID, sample)
}

func (s *clockService) setTrailEntry(localID string) {
	s.trailMu.Lock()
	s.trailEntryID = localID
	s.trailMu.Unlock()
}

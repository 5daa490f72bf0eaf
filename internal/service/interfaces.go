package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/timeclock/internal/domain"
)

var (
	// ErrAlreadyClockedIn is returned by ClockIn while an entry is open.
	ErrAlreadyClockedIn = fmt.Errorf("already clocked in: %w", domain.ErrInvalidTransition)

	// ErrNotClockedIn is returned by transitions that require an open entry.
	ErrNotClockedIn = fmt.Errorf("not clocked in: %w", domain.ErrInvalidTransition)
)

// ClockInOptions controls a clock-in transition.
type ClockInOptions struct {
	// SiteID selects the worksite whose geofence validates the clock-in
	// location. Empty means no validation.
	SiteID string
	// SkipLocation suppresses the location fix entirely.
	SkipLocation bool
}

// ClockOutOptions controls a clock-out transition.
type ClockOutOptions struct {
	Note         string
	SkipLocation bool
}

// ClockService is the local time entry state machine. All transitions
// are serialized; asynchronous work (location fixes, remote calls)
// never mutates entry state directly. Elapsed time is computed, not
// stored: consumers poll Current at their display cadence.
type ClockService interface {
	ClockIn(ctx context.Context, opts ClockInOptions) (*domain.TimeEntry, error)
	StartBreak(ctx context.Context) (*domain.TimeEntry, error)
	EndBreak(ctx context.Context) (*domain.TimeEntry, error)
	ClockOut(ctx context.Context, opts ClockOutOptions) (*domain.TimeEntry, error)

	// Current returns the open entry, or ErrNotClockedIn when idle.
	Current(ctx context.Context) (*domain.TimeEntry, error)
	History(ctx context.Context, limit int) ([]*domain.TimeEntry, error)

	// Reset wipes all local entries and queued operations.
	Reset(ctx context.Context) error
}

// QueueStatus is a read-only snapshot of the sync layer for indicators.
type QueueStatus struct {
	Pending  int
	Failed   int
	Draining bool
	Online   bool
}

// DrainResult summarizes a single drain pass.
type DrainResult struct {
	Applied int
	Skipped int
	Errors  int
}

// SyncService owns the durable offline mutation queue and its drain
// loop. Submit routes a mutation to the remote store when online and
// falls back to the queue on failure or while offline, so both paths
// share one retry mechanism.
type SyncService interface {
	Submit(ctx context.Context, op *domain.QueueOperation) error
	// Drain processes pending operations in queue order. Re-entrant
	// safe: a concurrent call while a pass is running is a no-op.
	Drain(ctx context.Context) (DrainResult, error)
	Status(ctx context.Context) (QueueStatus, error)

	// StartAutoDrain launches background draining on online edges and
	// on a coarse periodic timer. StopAutoDrain halts it.
	StartAutoDrain()
	StopAutoDrain()
}

// WorksiteService manages the registered worksites.
type WorksiteService interface {
	Create(ctx context.Context, w *domain.Worksite) error
	GetByID(ctx context.Context, id string) (*domain.Worksite, error)
	Resolve(ctx context.Context, idOrName string) (*domain.Worksite, error)
	List(ctx context.Context) ([]*domain.Worksite, error)
	Delete(ctx context.Context, id string) error
}

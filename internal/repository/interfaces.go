package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

type TimeEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByLocalID(ctx context.Context, localID string) (*domain.TimeEntry, error)
	// GetActive returns the single active or on-break entry for the user,
	// or ErrNotFound when the user is idle.
	GetActive(ctx context.Context, userID string) (*domain.TimeEntry, error)
	Update(ctx context.Context, e *domain.TimeEntry) error
	SetRemoteID(ctx context.Context, localID, remoteID string) error
	AppendSample(ctx context.Context, localID string, sample domain.LocationSample) error
	ListCompleted(ctx context.Context, userID string, limit int) ([]*domain.TimeEntry, error)
	DeleteAll(ctx context.Context) error
}

type QueueRepo interface {
	Enqueue(ctx context.Context, op *domain.QueueOperation) (int64, error)
	// ListPending returns pending operations in ascending queue_id order.
	ListPending(ctx context.Context) ([]*domain.QueueOperation, error)
	MarkAttempt(ctx context.Context, queueID int64, attemptCount int, lastError string, at time.Time) error
	MarkFailed(ctx context.Context, queueID int64) error
	Remove(ctx context.Context, queueID int64) error
	PendingCount(ctx context.Context) (int, error)
	FailedCount(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type WorksiteRepo interface {
	Create(ctx context.Context, w *domain.Worksite) error
	GetByID(ctx context.Context, id string) (*domain.Worksite, error)
	GetByName(ctx context.Context, name string) (*domain.Worksite, error)
	List(ctx context.Context) ([]*domain.Worksite, error)
	Delete(ctx context.Context, id string) error
}

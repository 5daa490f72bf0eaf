package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/netmon"
	"github.com/alexanderramin/timeclock/internal/remote"
	"github.com/alexanderramin/timeclock/internal/repository"
)

// errUnresolvedRemoteID marks an operation whose remote target is not
// known yet because the matching clock-in has not round-tripped. The
// operation is left queued and retried on a later pass; this is not a
// failure.
var errUnresolvedRemoteID = errors.New("remote entry id not resolved yet")

type syncService struct {
	queue    repository.QueueRepo
	entries  repository.TimeEntryRepo
	client   remote.Client
	monitor  *netmon.Monitor
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time

	drainInterval time.Duration
	draining      atomic.Bool

	autoMu     sync.Mutex
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

// NewSyncService creates the sync layer over the durable queue.
// drainInterval is the coarse safety-net cadence for automatic drains.
func NewSyncService(
	queue repository.QueueRepo,
	entries repository.TimeEntryRepo,
	client remote.Client,
	monitor *netmon.Monitor,
	uow db.UnitOfWork,
	drainInterval time.Duration,
	observers ...UseCaseObserver,
) SyncService {
	return &syncService{
		queue:         queue,
		entries:       entries,
		client:        client,
		monitor:       monitor,
		uow:           uow,
		observer:      useCaseObserverOrNoop(observers),
		now:           func() time.Time { return time.Now().UTC() },
		drainInterval: drainInterval,
	}
}

func (s *syncService) Submit(ctx context.Context, op *domain.QueueOperation) error {
	if s.monitor.Online() {
		err := s.apply(ctx, op)
		if err == nil {
			return nil
		}
		// Online-but-failing mutations are queued exactly like offline
		// ones so both paths share the queue's retry mechanism. Delivery
		// is at-least-once: if the remote create succeeded but the local
		// remote-ID write failed, the requeued op will create a second
		// remote entry on the next drain. Closing that window needs a
		// client-supplied idempotence key on the create request, which
		// the store's API does not take today.
		op.AttemptCount++
		msg := err.Error()
		at := s.now()
		op.LastError = &msg
		op.LastErrorAt = &at
	}

	if op.CreatedAt.IsZero() {
		op.CreatedAt = s.now()
	}
	if _, err := s.queue.Enqueue(ctx, op); err != nil {
		return fmt.Errorf("queueing %s operation: %w", op.Type, err)
	}
	return nil
}

func (s *syncService) Drain(ctx context.Context) (DrainResult, error) {
	var res DrainResult

	// Single in-flight pass: a concurrent Drain observes the flag and
	// returns without effect. Operations enqueued mid-pass are caught
	// by the next trigger.
	if !s.draining.CompareAndSwap(false, true) {
		return res, nil
	}
	defer s.draining.Store(false)

	if !s.monitor.Online() {
		return res, nil
	}

	start := s.now()
	ops, err := s.queue.ListPending(ctx)
	if err != nil {
		return res, err
	}

	// Failures block all later operations for the same entry: a
	// clock-out must never apply before its clock-in. Unrelated
	// entries keep draining.
	blocked := make(map[string]bool)

	for _, op := range ops {
		if ctx.Err() != nil {
			break
		}
		if blocked[op.LocalEntryID] {
			res.Skipped++
			continue
		}

		err := s.applyQueued(ctx, op)
		if err == nil {
			res.Applied++
			continue
		}

		blocked[op.LocalEntryID] = true
		if errors.Is(err, errUnresolvedRemoteID) {
			res.Skipped++
			continue
		}

		res.Errors++
		if markErr := s.queue.MarkAttempt(ctx, op.QueueID, op.AttemptCount+1, err.Error(), s.now()); markErr != nil {
			return res, markErr
		}
		if !remote.IsRetryable(err) {
			// Permanent rejection: flag the operation for review
			// instead of retrying forever.
			if markErr := s.queue.MarkFailed(ctx, op.QueueID); markErr != nil {
				return res, markErr
			}
		}
	}

	observe(ctx, s.observer, "sync.drain", start, nil, map[string]any{
		"applied": res.Applied,
		"skipped": res.Skipped,
		"errors":  res.Errors,
	})
	return res, nil
}

func (s *syncService) Status(ctx context.Context) (QueueStatus, error) {
	pending, err := s.queue.PendingCount(ctx)
	if err != nil {
		return QueueStatus{}, err
	}
	failed, err := s.queue.FailedCount(ctx)
	if err != nil {
		return QueueStatus{}, err
	}
	return QueueStatus{
		Pending:  pending,
		Failed:   failed,
		Draining: s.draining.Load(),
		Online:   s.monitor.Online(),
	}, nil
}

func (s *syncService) StartAutoDrain() {
	s.autoMu.Lock()
	defer s.autoMu.Unlock()
	if s.autoCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.autoCancel = cancel
	s.autoDone = make(chan struct{})
	edges := s.monitor.Subscribe()

	go s.runAutoDrain(ctx, edges, s.autoDone)
}

func (s *syncService) StopAutoDrain() {
	s.autoMu.Lock()
	cancel, done := s.autoCancel, s.autoDone
	s.autoCancel = nil
	s.autoDone = nil
	s.autoMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *syncService) runAutoDrain(ctx context.Context, edges <-chan bool, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case online := <-edges:
			if online {
				_, _ = s.Drain(ctx)
			}
		case <-ticker.C:
			_, _ = s.Drain(ctx)
		}
	}
}

// apply performs the remote mutation for an operation that is not yet
// queued (the direct online path).
func (s *syncService) apply(ctx context.Context, op *domain.QueueOperation) error {
	switch op.Type {
	case domain.OpClockIn:
		remoteID, err := s.createRemote(ctx, op)
		if err != nil {
			return err
		}
		return s.recordRemoteID(ctx, op.LocalEntryID, remoteID)
	case domain.OpClockOut:
		return s.applyRemoteClockOut(ctx, op)
	default:
		return fmt.Errorf("%w: unknown operation type %q", remote.ErrRejected, op.Type)
	}
}

// applyQueued performs the remote mutation for a queued operation and,
// on success, removes it. Clock-in removal and remote-ID recording
// commit atomically so a retried pass never sees one without the other.
func (s *syncService) applyQueued(ctx context.Context, op *domain.QueueOperation) error {
	switch op.Type {
	case domain.OpClockIn:
		remoteID, err := s.createRemote(ctx, op)
		if err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txEntries := repository.NewSQLiteTimeEntryRepo(tx)
			txQueue := repository.NewSQLiteQueueRepo(tx)
			if err := txEntries.SetRemoteID(ctx, op.LocalEntryID, remoteID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			return txQueue.Remove(ctx, op.QueueID)
		})
	case domain.OpClockOut:
		if err := s.applyRemoteClockOut(ctx, op); err != nil {
			return err
		}
		return s.queue.Remove(ctx, op.QueueID)
	default:
		return fmt.Errorf("%w: unknown operation type %q", remote.ErrRejected, op.Type)
	}
}

func (s *syncService) createRemote(ctx context.Context, op *domain.QueueOperation) (string, error) {
	p, err := op.DecodeClockIn()
	if err != nil {
		return "", fmt.Errorf("%w: %v", remote.ErrRejected, err)
	}
	return s.client.CreateClockIn(ctx, remote.ClockInRequest{
		UserID:     p.UserID,
		ClockInAt:  p.ClockInAt,
		Location:   p.Location,
		Validation: p.Validation,
	})
}

func (s *syncService) applyRemoteClockOut(ctx context.Context, op *domain.QueueOperation) error {
	remoteID, err := s.resolveRemoteID(ctx, op)
	if err != nil {
		return err
	}
	p, err := op.DecodeClockOut()
	if err != nil {
		return fmt.Errorf("%w: %v", remote.ErrRejected, err)
	}
	return s.client.ApplyClockOut(ctx, remoteID, remote.ClockOutRequest{
		ClockOutAt: p.ClockOutAt,
		BreakMin:   p.BreakMin,
		Location:   p.Location,
		Note:       p.Note,
	})
}

// recordRemoteID stores the server-assigned ID on the local entry. A
// missing entry (wiped by a reset) is tolerated.
func (s *syncService) recordRemoteID(ctx context.Context, localEntryID, remoteID string) error {
	if err := s.entries.SetRemoteID(ctx, localEntryID, remoteID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// resolveRemoteID returns the remote target for an operation: the ID
// captured at enqueue time when known, otherwise the mapping recorded
// by a previously drained clock-in for the same local entry.
func (s *syncService) resolveRemoteID(ctx context.Context, op *domain.QueueOperation) (string, error) {
	if op.RemoteID != nil && *op.RemoteID != "" {
		return *op.RemoteID, nil
	}
	entry, err := s.entries.GetByLocalID(ctx, op.LocalEntryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", errUnresolvedRemoteID
		}
		return "", err
	}
	if entry.RemoteID == nil || *entry.RemoteID == "" {
		return "", errUnresolvedRemoteID
	}
	return *entry.RemoteID, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/domain"
)

// SQLiteQueueRepo implements QueueRepo using a SQLite database. The
// AUTOINCREMENT queue_id column provides the durable FIFO ordering.
type SQLiteQueueRepo struct {
	db db.DBTX
}

// NewSQLiteQueueRepo creates a new SQLiteQueueRepo.
func NewSQLiteQueueRepo(db db.DBTX) *SQLiteQueueRepo {
	return &SQLiteQueueRepo{db: db}
}

func (r *SQLiteQueueRepo) Enqueue(ctx context.Context, op *domain.QueueOperation) (int64, error) {
	query := `INSERT INTO queue_operations
		(op_type, local_entry_id, remote_id, payload, status, attempt_count, last_error, last_error_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		string(op.Type),
		op.LocalEntryID,
		nullableString(op.RemoteID),
		string(op.Payload),
		string(domain.OpPending),
		op.AttemptCount,
		nullableString(op.LastError),
		nullableTimeToString(op.LastErrorAt, time.RFC3339),
		op.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueueing operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading queue ID: %w", err)
	}
	op.QueueID = id
	op.Status = domain.OpPending
	return id, nil
}

func (r *SQLiteQueueRepo) ListPending(ctx context.Context) ([]*domain.QueueOperation, error) {
	query := `SELECT queue_id, op_type, local_entry_id, remote_id, payload, status,
		attempt_count, last_error, last_error_at, created_at
		FROM queue_operations WHERE status = 'pending' ORDER BY queue_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing pending operations: %w", err)
	}
	defer rows.Close()
	return r.scanOps(rows)
}

func (r *SQLiteQueueRepo) MarkAttempt(ctx context.Context, queueID int64, attemptCount int, lastError string, at time.Time) error {
	query := `UPDATE queue_operations
		SET attempt_count = ?, last_error = ?, last_error_at = ?
		WHERE queue_id = ?`
	res, err := r.db.ExecContext(ctx, query, attemptCount, lastError, at.Format(time.RFC3339), queueID)
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}
	return requireRow(res, queueID)
}

func (r *SQLiteQueueRepo) MarkFailed(ctx context.Context, queueID int64) error {
	query := `UPDATE queue_operations SET status = 'failed' WHERE queue_id = ?`
	res, err := r.db.ExecContext(ctx, query, queueID)
	if err != nil {
		return fmt.Errorf("marking operation failed: %w", err)
	}
	return requireRow(res, queueID)
}

func (r *SQLiteQueueRepo) Remove(ctx context.Context, queueID int64) error {
	query := `DELETE FROM queue_operations WHERE queue_id = ?`
	res, err := r.db.ExecContext(ctx, query, queueID)
	if err != nil {
		return fmt.Errorf("removing operation: %w", err)
	}
	return requireRow(res, queueID)
}

func (r *SQLiteQueueRepo) PendingCount(ctx context.Context) (int, error) {
	return r.countByStatus(ctx, domain.OpPending)
}

func (r *SQLiteQueueRepo) FailedCount(ctx context.Context) (int, error) {
	return r.countByStatus(ctx, domain.OpFailed)
}

func (r *SQLiteQueueRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queue_operations`); err != nil {
		return fmt.Errorf("deleting queue operations: %w", err)
	}
	return nil
}

func (r *SQLiteQueueRepo) countByStatus(ctx context.Context, status domain.OpStatus) (int, error) {
	var n int
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_operations WHERE status = ?`, string(status))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s operations: %w", status, err)
	}
	return n, nil
}

// scanOps scans queue operations from *sql.Rows.
func (r *SQLiteQueueRepo) scanOps(rows *sql.Rows) ([]*domain.QueueOperation, error) {
	var ops []*domain.QueueOperation
	for rows.Next() {
		var op domain.QueueOperation
		var opType, status, payload, createdAtStr string
		var remoteID, lastError, lastErrorAtStr sql.NullString

		err := rows.Scan(
			&op.QueueID, &opType, &op.LocalEntryID, &remoteID, &payload, &status,
			&op.AttemptCount, &lastError, &lastErrorAtStr, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning queue operation: %w", err)
		}

		op.Type = domain.OpType(opType)
		op.Status = domain.OpStatus(status)
		op.RemoteID = stringPtrFromNull(remoteID)
		op.LastError = stringPtrFromNull(lastError)
		op.LastErrorAt = parseNullableTime(lastErrorAtStr, time.RFC3339)
		op.Payload = json.RawMessage(payload)
		op.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue operations: %w", err)
	}
	return ops, nil
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result, queueID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("queue operation %d: %w", queueID, ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/domain"
)

// SQLiteTimeEntryRepo implements TimeEntryRepo using a SQLite database.
type SQLiteTimeEntryRepo struct {
	db db.DBTX
}

// NewSQLiteTimeEntryRepo creates a new SQLiteTimeEntryRepo.
func NewSQLiteTimeEntryRepo(db db.DBTX) *SQLiteTimeEntryRepo {
	return &SQLiteTimeEntryRepo{db: db}
}

const entryColumns = `local_id, remote_id, user_id, state, clock_in_at, clock_out_at,
	clock_in_location, clock_out_location, break_accumulated_min, break_started_at,
	validation_valid, validation_distance_m, created_at, updated_at`

func (r *SQLiteTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	inLoc, err := locationToJSON(e.ClockInLocation)
	if err != nil {
		return err
	}
	outLoc, err := locationToJSON(e.ClockOutLocation)
	if err != nil {
		return err
	}
	validationValid, validationDist := validationToValues(e.LocationValidation)

	query := `INSERT INTO time_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.LocalID,
		nullableString(e.RemoteID),
		e.UserID,
		string(e.State),
		e.ClockInAt.Format(time.RFC3339),
		nullableTimeToString(e.ClockOutAt, time.RFC3339),
		inLoc,
		outLoc,
		e.BreakAccumulatedMin,
		nullableTimeToString(e.BreakStartedAt, time.RFC3339),
		validationValid,
		validationDist,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}

	for _, sample := range e.LocationHistory {
		if err := r.AppendSample(ctx, e.LocalID, sample); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) GetByLocalID(ctx context.Context, localID string) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE local_id = ?`
	row := r.db.QueryRowContext(ctx, query, localID)
	e, err := r.scanEntry(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTrail(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteTimeEntryRepo) GetActive(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
		WHERE user_id = ? AND state IN ('active', 'on_break')
		ORDER BY clock_in_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)
	e, err := r.scanEntry(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTrail(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *SQLiteTimeEntryRepo) Update(ctx context.Context, e *domain.TimeEntry) error {
	inLoc, err := locationToJSON(e.ClockInLocation)
	if err != nil {
		return err
	}
	outLoc, err := locationToJSON(e.ClockOutLocation)
	if err != nil {
		return err
	}
	validationValid, validationDist := validationToValues(e.LocationValidation)

	query := `UPDATE time_entries SET
		remote_id = ?, state = ?, clock_out_at = ?,
		clock_in_location = ?, clock_out_location = ?,
		break_accumulated_min = ?, break_started_at = ?,
		validation_valid = ?, validation_distance_m = ?, updated_at = ?
		WHERE local_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(e.RemoteID),
		string(e.State),
		nullableTimeToString(e.ClockOutAt, time.RFC3339),
		inLoc,
		outLoc,
		e.BreakAccumulatedMin,
		nullableTimeToString(e.BreakStartedAt, time.RFC3339),
		validationValid,
		validationDist,
		e.UpdatedAt.Format(time.RFC3339),
		e.LocalID,
	)
	if err != nil {
		return fmt.Errorf("updating time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating time entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("time entry %s: %w", e.LocalID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) SetRemoteID(ctx context.Context, localID, remoteID string) error {
	query := `UPDATE time_entries SET remote_id = ?, updated_at = ? WHERE local_id = ?`
	res, err := r.db.ExecContext(ctx, query, remoteID, time.Now().UTC().Format(time.RFC3339), localID)
	if err != nil {
		return fmt.Errorf("setting remote ID: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting remote ID: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("time entry %s: %w", localID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) AppendSample(ctx context.Context, localID string, sample domain.LocationSample) error {
	query := `INSERT INTO location_samples (entry_local_id, latitude, longitude, accuracy_meters, captured_at, address)
		VALUES (?, ?, ?, ?, ?, ?)`
	var accuracy interface{}
	if sample.AccuracyMeters != nil {
		accuracy = *sample.AccuracyMeters
	}
	_, err := r.db.ExecContext(ctx, query,
		localID,
		sample.Latitude,
		sample.Longitude,
		accuracy,
		sample.CapturedAt.Format(time.RFC3339),
		sample.Address,
	)
	if err != nil {
		return fmt.Errorf("inserting location sample: %w", err)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) ListCompleted(ctx context.Context, userID string, limit int) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
		WHERE user_id = ? AND state = 'completed'
		ORDER BY clock_in_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing completed entries: %w", err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := r.loadTrail(ctx, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *SQLiteTimeEntryRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM location_samples`); err != nil {
		return fmt.Errorf("deleting location samples: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_entries`); err != nil {
		return fmt.Errorf("deleting time entries: %w", err)
	}
	return nil
}

// loadTrail loads the append-only location trail for an entry.
func (r *SQLiteTimeEntryRepo) loadTrail(ctx context.Context, e *domain.TimeEntry) error {
	query := `SELECT latitude, longitude, accuracy_meters, captured_at, address
		FROM location_samples WHERE entry_local_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, e.LocalID)
	if err != nil {
		return fmt.Errorf("loading location trail: %w", err)
	}
	defer rows.Close()

	e.LocationHistory = nil
	for rows.Next() {
		var s domain.LocationSample
		var accuracy sql.NullFloat64
		var capturedAtStr string
		if err := rows.Scan(&s.Latitude, &s.Longitude, &accuracy, &capturedAtStr, &s.Address); err != nil {
			return fmt.Errorf("scanning location sample: %w", err)
		}
		if accuracy.Valid {
			v := accuracy.Float64
			s.AccuracyMeters = &v
		}
		s.CapturedAt, err = time.Parse(time.RFC3339, capturedAtStr)
		if err != nil {
			return fmt.Errorf("parsing captured_at: %w", err)
		}
		e.LocationHistory = append(e.LocationHistory, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating location samples: %w", err)
	}
	return nil
}

// scanEntry scans a single entry from a *sql.Row.
func (r *SQLiteTimeEntryRepo) scanEntry(row *sql.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var remoteID, clockOutAtStr, breakStartedAtStr, inLocStr, outLocStr sql.NullString
	var validationValid sql.NullInt64
	var validationDist sql.NullFloat64
	var state, clockInAtStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&e.LocalID, &remoteID, &e.UserID, &state, &clockInAtStr, &clockOutAtStr,
		&inLocStr, &outLocStr, &e.BreakAccumulatedMin, &breakStartedAtStr,
		&validationValid, &validationDist, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}

	return r.populateEntry(&e, state, remoteID, clockInAtStr, clockOutAtStr, breakStartedAtStr,
		inLocStr, outLocStr, validationValid, validationDist, createdAtStr, updatedAtStr)
}

// scanEntries scans multiple entries from *sql.Rows.
func (r *SQLiteTimeEntryRepo) scanEntries(rows *sql.Rows) ([]*domain.TimeEntry, error) {
	var entries []*domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		var remoteID, clockOutAtStr, breakStartedAtStr, inLocStr, outLocStr sql.NullString
		var validationValid sql.NullInt64
		var validationDist sql.NullFloat64
		var state, clockInAtStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&e.LocalID, &remoteID, &e.UserID, &state, &clockInAtStr, &clockOutAtStr,
			&inLocStr, &outLocStr, &e.BreakAccumulatedMin, &breakStartedAtStr,
			&validationValid, &validationDist, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry row: %w", err)
		}

		entry, err := r.populateEntry(&e, state, remoteID, clockInAtStr, clockOutAtStr, breakStartedAtStr,
			inLocStr, outLocStr, validationValid, validationDist, createdAtStr, updatedAtStr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

// populateEntry fills in parsed fields after scanning raw column values.
func (r *SQLiteTimeEntryRepo) populateEntry(
	e *domain.TimeEntry,
	state string,
	remoteID sql.NullString,
	clockInAtStr string,
	clockOutAtStr, breakStartedAtStr, inLocStr, outLocStr sql.NullString,
	validationValid sql.NullInt64,
	validationDist sql.NullFloat64,
	createdAtStr, updatedAtStr string,
) (*domain.TimeEntry, error) {
	var parseErr error
	e.State = domain.EntryState(state)
	e.RemoteID = stringPtrFromNull(remoteID)

	e.ClockInAt, parseErr = time.Parse(time.RFC3339, clockInAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing clock_in_at: %w", parseErr)
	}
	e.ClockOutAt = parseNullableTime(clockOutAtStr, time.RFC3339)
	e.BreakStartedAt = parseNullableTime(breakStartedAtStr, time.RFC3339)

	e.ClockInLocation, parseErr = locationFromJSON(inLocStr)
	if parseErr != nil {
		return nil, parseErr
	}
	e.ClockOutLocation, parseErr = locationFromJSON(outLocStr)
	if parseErr != nil {
		return nil, parseErr
	}

	if validationValid.Valid {
		dist := math.Inf(1)
		if validationDist.Valid {
			dist = validationDist.Float64
		}
		e.LocationValidation = &domain.GeofenceResult{
			Valid:          validationValid.Int64 != 0,
			DistanceMeters: dist,
		}
	}

	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return e, nil
}

// validationToValues converts an optional geofence result into nullable
// column values. Infinite distances (malformed input) are stored as NULL.
func validationToValues(v *domain.GeofenceResult) (interface{}, interface{}) {
	if v == nil {
		return nil, nil
	}
	valid := 0
	if v.Valid {
		valid = 1
	}
	if math.IsInf(v.DistanceMeters, 0) || math.IsNaN(v.DistanceMeters) {
		return valid, nil
	}
	return valid, v.DistanceMeters
}

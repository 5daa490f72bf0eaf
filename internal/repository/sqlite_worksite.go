package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/db"
	"github.com/alexanderramin/timeclock/internal/domain"
)

// SQLiteWorksiteRepo implements WorksiteRepo using a SQLite database.
type SQLiteWorksiteRepo struct {
	db db.DBTX
}

// NewSQLiteWorksiteRepo creates a new SQLiteWorksiteRepo.
func NewSQLiteWorksiteRepo(db db.DBTX) *SQLiteWorksiteRepo {
	return &SQLiteWorksiteRepo{db: db}
}

func (r *SQLiteWorksiteRepo) Create(ctx context.Context, w *domain.Worksite) error {
	query := `INSERT INTO worksites (id, name, latitude, longitude, radius_meters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.Name,
		w.Latitude,
		w.Longitude,
		w.RadiusMeters,
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting worksite: %w", err)
	}
	return nil
}

func (r *SQLiteWorksiteRepo) GetByID(ctx context.Context, id string) (*domain.Worksite, error) {
	query := `SELECT id, name, latitude, longitude, radius_meters, created_at, updated_at
		FROM worksites WHERE id = ?`
	return r.scanSite(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteWorksiteRepo) GetByName(ctx context.Context, name string) (*domain.Worksite, error) {
	query := `SELECT id, name, latitude, longitude, radius_meters, created_at, updated_at
		FROM worksites WHERE name = ?`
	return r.scanSite(r.db.QueryRowContext(ctx, query, name))
}

func (r *SQLiteWorksiteRepo) List(ctx context.Context) ([]*domain.Worksite, error) {
	query := `SELECT id, name, latitude, longitude, radius_meters, created_at, updated_at
		FROM worksites ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing worksites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Worksite
	for rows.Next() {
		var w domain.Worksite
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&w.ID, &w.Name, &w.Latitude, &w.Longitude, &w.RadiusMeters, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning worksite row: %w", err)
		}
		if err := parseSiteTimes(&w, createdAtStr, updatedAtStr); err != nil {
			return nil, err
		}
		sites = append(sites, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating worksites: %w", err)
	}
	return sites, nil
}

func (r *SQLiteWorksiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM worksites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting worksite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting worksite: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("worksite %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWorksiteRepo) scanSite(row *sql.Row) (*domain.Worksite, error) {
	var w domain.Worksite
	var createdAtStr, updatedAtStr string
	err := row.Scan(&w.ID, &w.Name, &w.Latitude, &w.Longitude, &w.RadiusMeters, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("worksite: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning worksite: %w", err)
	}
	if err := parseSiteTimes(&w, createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &w, nil
}

func parseSiteTimes(w *domain.Worksite, createdAtStr, updatedAtStr string) error {
	var err error
	w.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	w.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	return nil
}

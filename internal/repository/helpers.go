package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
)

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// nullableString converts a *string to a value suitable for SQLite storage.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// stringPtrFromNull converts a sql.NullString to a *string.
func stringPtrFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// locationToJSON serializes an optional location sample for a TEXT column.
// Returns nil (SQL NULL) for a nil sample.
func locationToJSON(loc *domain.LocationSample) (interface{}, error) {
	if loc == nil {
		return nil, nil
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("encoding location sample: %w", err)
	}
	return string(data), nil
}

// locationFromJSON deserializes an optional location sample column.
func locationFromJSON(s sql.NullString) (*domain.LocationSample, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var loc domain.LocationSample
	if err := json.Unmarshal([]byte(s.String), &loc); err != nil {
		return nil, fmt.Errorf("decoding location sample: %w", err)
	}
	return &loc, nil
}

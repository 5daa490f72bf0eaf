package testutil

import (
	"time"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/google/uuid"
)

// Entry options
type EntryOption func(*domain.TimeEntry)

func WithClockInAt(t time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ClockInAt = t
		e.CreatedAt = t
		e.UpdatedAt = t
	}
}

func WithRemoteID(id string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.RemoteID = &id
	}
}

func WithClockInLocation(lat, lon float64) EntryOption {
	return func(e *domain.TimeEntry) {
		loc := NewTestSample(lat, lon)
		e.ClockInLocation = &loc
		e.LocationHistory = []domain.LocationSample{loc}
	}
}

func WithValidation(valid bool, distance float64) EntryOption {
	return func(e *domain.TimeEntry) {
		e.LocationValidation = &domain.GeofenceResult{Valid: valid, DistanceMeters: distance}
	}
}

// NewTestEntry creates an active entry clocked in one hour ago.
func NewTestEntry(userID string, opts ...EntryOption) *domain.TimeEntry {
	now := time.Now().UTC().Truncate(time.Second)
	e := domain.NewTimeEntry(uuid.New().String(), userID, now.Add(-time.Hour), nil, nil)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewCompletedEntry creates a completed one-hour entry ending at the given time.
func NewCompletedEntry(userID string, endedAt time.Time, opts ...EntryOption) *domain.TimeEntry {
	e := domain.NewTimeEntry(uuid.New().String(), userID, endedAt.Add(-time.Hour), nil, nil)
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Close(endedAt, nil); err != nil {
		panic(err)
	}
	return e
}

// NewTestSample returns a location sample at the given coordinates.
func NewTestSample(lat, lon float64) domain.LocationSample {
	return domain.LocationSample{
		Latitude:   lat,
		Longitude:  lon,
		CapturedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Worksite options
type SiteOption func(*domain.Worksite)

func WithRadius(m float64) SiteOption {
	return func(w *domain.Worksite) {
		w.RadiusMeters = m
	}
}

// NewTestSite creates a worksite at the given coordinates.
func NewTestSite(name string, lat, lon float64, opts ...SiteOption) *domain.Worksite {
	now := time.Now().UTC().Truncate(time.Second)
	w := &domain.Worksite{
		ID:        uuid.New().String(),
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewTestOp creates a pending queue operation with an encoded payload.
func NewTestOp(opType domain.OpType, localEntryID string, payload any) *domain.QueueOperation {
	raw, err := domain.EncodePayload(payload)
	if err != nil {
		panic(err)
	}
	return &domain.QueueOperation{
		Type:         opType,
		LocalEntryID: localEntryID,
		Payload:      raw,
		Status:       domain.OpPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

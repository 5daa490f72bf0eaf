package domain

import "time"

// LocationSample is a single immutable geolocation fix. Samples are
// produced by a location provider and referenced by time entries; they
// are never mutated after creation.
type LocationSample struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
	Address        string    `json:"address,omitempty"`
}

package domain

import "time"

// DefaultGeofenceRadiusMeters applies to worksites without an explicit
// radius override.
const DefaultGeofenceRadiusMeters = 200.0

// Worksite is a registered work location with a circular geofence used
// to validate clock-in positions.
type Worksite struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64 // 0 means use the global default
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectiveRadius returns the site radius, falling back to the global
// default when no override is set.
func (w *Worksite) EffectiveRadius() float64 {
	if w.RadiusMeters > 0 {
		return w.RadiusMeters
	}
	return DefaultGeofenceRadiusMeters
}

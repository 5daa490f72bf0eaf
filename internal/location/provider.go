package location

import (
	"context"
	"errors"

	"github.com/alexanderramin/timeclock/internal/domain"
)

var (
	// ErrPermissionDenied indicates the platform refused location access.
	// Callers must degrade gracefully: recording time is the primary
	// obligation, location is secondary metadata.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable indicates no fix could be obtained.
	ErrUnavailable = errors.New("location unavailable")
)

// Provider obtains geolocation fixes from the device.
type Provider interface {
	// CurrentSample returns a single fix on demand.
	CurrentSample(ctx context.Context) (*domain.LocationSample, error)
}

// BackgroundTracker controls platform background tracking, bound
// strictly to the working interval: started at clock-in, stopped at
// clock-out. Stop must be unconditional — it is called on clock-out
// even when the corresponding Start returned false, so a background
// task can never leak past the working interval.
type BackgroundTracker interface {
	Start(ctx context.Context) bool
	Stop(ctx context.Context)
}

// NoopTracker is a BackgroundTracker for platforms without a tracking
// agent.
type NoopTracker struct{}

func (NoopTracker) Start(context.Context) bool { return false }
func (NoopTracker) Stop(context.Context)       {}

package domain

import (
	"errors"
	"time"
)

// ErrInvalidTransition is returned when a state-machine transition is
// attempted from a state that does not allow it. The entry is left
// unchanged.
var ErrInvalidTransition = errors.New("invalid time entry transition")

// TimeEntry is one continuous work session from clock-in to clock-out,
// including breaks. The local device owns the entry; the remote copy is
// a write-only projection identified by RemoteID once the create
// mutation has round-tripped.
type TimeEntry struct {
	LocalID  string
	RemoteID *string
	UserID   string

	State      EntryState
	ClockInAt  time.Time
	ClockOutAt *time.Time

	ClockInLocation  *LocationSample
	ClockOutLocation *LocationSample
	LocationHistory  []LocationSample

	BreakAccumulatedMin int
	BreakStartedAt      *time.Time

	LocationValidation *GeofenceResult

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimeEntry creates an active entry clocked in at now. The location
// sample is optional; when present it seeds the location trail.
func NewTimeEntry(localID, userID string, now time.Time, loc *LocationSample, validation *GeofenceResult) *TimeEntry {
	e := &TimeEntry{
		LocalID:            localID,
		UserID:             userID,
		State:              EntryActive,
		ClockInAt:          now,
		ClockInLocation:    loc,
		LocationValidation: validation,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if loc != nil {
		e.LocationHistory = []LocationSample{*loc}
	}
	return e
}

// StartBreak begins a break. Allowed only while active.
func (e *TimeEntry) StartBreak(now time.Time) error {
	if e.State != EntryActive {
		return ErrInvalidTransition
	}
	t := now
	e.BreakStartedAt = &t
	e.State = EntryOnBreak
	e.UpdatedAt = now
	return nil
}

// EndBreak ends the running break, adding its rounded duration in
// minutes to the accumulated break total. Allowed only while on break.
func (e *TimeEntry) EndBreak(now time.Time) error {
	if e.State != EntryOnBreak || e.BreakStartedAt == nil {
		return ErrInvalidTransition
	}
	e.BreakAccumulatedMin += roundedMinutes(now.Sub(*e.BreakStartedAt))
	e.BreakStartedAt = nil
	e.State = EntryActive
	e.UpdatedAt = now
	return nil
}

// Close completes the entry. Allowed while active or on break; a running
// break is ended first with the same accounting as EndBreak. The
// clock-out location, when present, is appended to the trail.
func (e *TimeEntry) Close(now time.Time, loc *LocationSample) error {
	switch e.State {
	case EntryOnBreak:
		if err := e.EndBreak(now); err != nil {
			return err
		}
	case EntryActive:
	default:
		return ErrInvalidTransition
	}

	t := now
	e.ClockOutAt = &t
	e.ClockOutLocation = loc
	if loc != nil {
		e.LocationHistory = append(e.LocationHistory, *loc)
	}
	e.State = EntryCompleted
	e.UpdatedAt = now
	return nil
}

// AppendLocation records a sample on the trail. Allowed only while the
// entry is an open working interval.
func (e *TimeEntry) AppendLocation(sample LocationSample) error {
	if !e.State.Working() {
		return ErrInvalidTransition
	}
	e.LocationHistory = append(e.LocationHistory, sample)
	return nil
}

// ElapsedSeconds returns whole seconds worked since clock-in, including
// break time. Zero once completed timing is read from ClockOutAt.
func (e *TimeEntry) ElapsedSeconds(now time.Time) int {
	end := now
	if e.State == EntryCompleted && e.ClockOutAt != nil {
		end = *e.ClockOutAt
	}
	secs := int(end.Sub(e.ClockInAt).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// BreakMinutes returns accumulated break minutes plus the running break,
// if any.
func (e *TimeEntry) BreakMinutes(now time.Time) int {
	total := e.BreakAccumulatedMin
	if e.State == EntryOnBreak && e.BreakStartedAt != nil {
		total += roundedMinutes(now.Sub(*e.BreakStartedAt))
	}
	return total
}

// WorkedMinutes returns elapsed minutes minus break minutes, floored at
// zero.
func (e *TimeEntry) WorkedMinutes(now time.Time) int {
	worked := e.ElapsedSeconds(now)/60 - e.BreakMinutes(now)
	if worked < 0 {
		return 0
	}
	return worked
}

// roundedMinutes converts a duration to minutes rounded to nearest.
func roundedMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int((d + 30*time.Second) / time.Minute)
}

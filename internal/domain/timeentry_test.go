package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func newActiveEntry() *TimeEntry {
	return NewTimeEntry("local-1", "user-1", entryNow, nil, nil)
}

func TestNewTimeEntry_SeedsTrailWithLocation(t *testing.T) {
	loc := &LocationSample{Latitude: 52.52, Longitude: 13.405, CapturedAt: entryNow}
	e := NewTimeEntry("local-1", "user-1", entryNow, loc, nil)

	assert.Equal(t, EntryActive, e.State)
	assert.Equal(t, entryNow, e.ClockInAt)
	require.Len(t, e.LocationHistory, 1)
	assert.Equal(t, 52.52, e.LocationHistory[0].Latitude)
}

func TestNewTimeEntry_NoLocation(t *testing.T) {
	e := newActiveEntry()
	assert.Nil(t, e.ClockInLocation)
	assert.Empty(t, e.LocationHistory)
}

func TestStartEndBreak_AccumulatesMinutes(t *testing.T) {
	e := newActiveEntry()

	require.NoError(t, e.StartBreak(entryNow.Add(1*time.Hour)))
	assert.Equal(t, EntryOnBreak, e.State)
	require.NotNil(t, e.BreakStartedAt)

	require.NoError(t, e.EndBreak(entryNow.Add(1*time.Hour+14*time.Minute)))
	assert.Equal(t, EntryActive, e.State)
	assert.Nil(t, e.BreakStartedAt)
	assert.Equal(t, 14, e.BreakAccumulatedMin)
}

func TestEndBreak_RoundsToNearestMinute(t *testing.T) {
	e := newActiveEntry()

	require.NoError(t, e.StartBreak(entryNow))
	require.NoError(t, e.EndBreak(entryNow.Add(90*time.Second)))
	assert.Equal(t, 2, e.BreakAccumulatedMin, "90s rounds up to 2 minutes")

	require.NoError(t, e.StartBreak(entryNow.Add(10*time.Minute)))
	require.NoError(t, e.EndBreak(entryNow.Add(10*time.Minute+29*time.Second)))
	assert.Equal(t, 2, e.BreakAccumulatedMin, "29s rounds down to 0 minutes")
}

func TestBreaks_AccumulateAcrossIntervals(t *testing.T) {
	e := newActiveEntry()

	require.NoError(t, e.StartBreak(entryNow.Add(1*time.Hour)))
	require.NoError(t, e.EndBreak(entryNow.Add(1*time.Hour+10*time.Minute)))
	require.NoError(t, e.StartBreak(entryNow.Add(3*time.Hour)))
	require.NoError(t, e.EndBreak(entryNow.Add(3*time.Hour+20*time.Minute)))

	assert.Equal(t, 30, e.BreakAccumulatedMin)
}

func TestStartBreak_InvalidFromOnBreak(t *testing.T) {
	e := newActiveEntry()
	require.NoError(t, e.StartBreak(entryNow))

	err := e.StartBreak(entryNow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, EntryOnBreak, e.State, "failed transition must not mutate state")
}

func TestEndBreak_InvalidFromActive(t *testing.T) {
	e := newActiveEntry()
	err := e.EndBreak(entryNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, EntryActive, e.State)
	assert.Zero(t, e.BreakAccumulatedMin)
}

func TestClose_FromActive(t *testing.T) {
	e := newActiveEntry()
	out := entryNow.Add(8 * time.Hour)
	loc := &LocationSample{Latitude: 1, Longitude: 2, CapturedAt: out}

	require.NoError(t, e.Close(out, loc))

	assert.Equal(t, EntryCompleted, e.State)
	require.NotNil(t, e.ClockOutAt)
	assert.Equal(t, out, *e.ClockOutAt)
	require.Len(t, e.LocationHistory, 1)
	assert.Equal(t, loc.Latitude, e.LocationHistory[0].Latitude)
}

func TestClose_WhileOnBreak_EndsBreakFirst(t *testing.T) {
	e := newActiveEntry()
	require.NoError(t, e.StartBreak(entryNow.Add(1*time.Hour)))

	out := entryNow.Add(1*time.Hour + 25*time.Minute)
	require.NoError(t, e.Close(out, nil))

	assert.Equal(t, EntryCompleted, e.State)
	assert.Nil(t, e.BreakStartedAt)
	assert.Equal(t, 25, e.BreakAccumulatedMin, "running break is settled on clock-out")
}

func TestClose_InvalidWhenCompleted(t *testing.T) {
	e := newActiveEntry()
	require.NoError(t, e.Close(entryNow.Add(time.Hour), nil))

	err := e.Close(entryNow.Add(2*time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NotNil(t, e.ClockOutAt)
	assert.Equal(t, entryNow.Add(time.Hour), *e.ClockOutAt, "completed entry is immutable")
}

func TestAppendLocation_OnlyWhileWorking(t *testing.T) {
	e := newActiveEntry()
	sample := LocationSample{Latitude: 1, Longitude: 1, CapturedAt: entryNow}

	require.NoError(t, e.AppendLocation(sample))
	require.NoError(t, e.StartBreak(entryNow))
	require.NoError(t, e.AppendLocation(sample))
	assert.Len(t, e.LocationHistory, 2)

	require.NoError(t, e.Close(entryNow.Add(time.Hour), nil))
	err := e.AppendLocation(sample)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, e.LocationHistory, 2)
}

func TestElapsedSeconds(t *testing.T) {
	e := newActiveEntry()
	assert.Equal(t, 90, e.ElapsedSeconds(entryNow.Add(90*time.Second)))

	require.NoError(t, e.Close(entryNow.Add(2*time.Hour), nil))
	// After completion, elapsed time is frozen at clock-out.
	assert.Equal(t, 7200, e.ElapsedSeconds(entryNow.Add(10*time.Hour)))
}

func TestBreakMinutes_IncludesRunningBreak(t *testing.T) {
	e := newActiveEntry()
	require.NoError(t, e.StartBreak(entryNow))
	assert.Equal(t, 10, e.BreakMinutes(entryNow.Add(10*time.Minute)))
}

func TestWorkedMinutes_SubtractsBreaks(t *testing.T) {
	e := newActiveEntry()
	require.NoError(t, e.StartBreak(entryNow.Add(1*time.Hour)))
	require.NoError(t, e.EndBreak(entryNow.Add(1*time.Hour+30*time.Minute)))

	assert.Equal(t, 90, e.WorkedMinutes(entryNow.Add(2*time.Hour)))
}

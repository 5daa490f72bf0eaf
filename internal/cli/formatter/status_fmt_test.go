package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/service"
)

func TestFormatStatus_Idle(t *testing.T) {
	out := FormatStatus(nil, service.QueueStatus{Online: true}, time.Now())

	assert.Contains(t, out, "TIME CLOCK")
	assert.Contains(t, out, "Clocked Out")
	assert.Contains(t, out, "online")
}

func TestFormatStatus_ActiveEntry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	entry := domain.NewTimeEntry("local-1", "user-1", now.Add(-90*time.Minute), nil, nil)

	out := FormatStatus(entry, service.QueueStatus{Online: false, Pending: 2}, now)

	assert.Contains(t, out, "Clocked In")
	assert.Contains(t, out, "01:30:00")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "2 pending")
	assert.Contains(t, out, "local only")
}

func TestFormatStatus_FailedOperationsSurface(t *testing.T) {
	out := FormatStatus(nil, service.QueueStatus{Online: true, Failed: 1}, time.Now())
	assert.Contains(t, out, "1 need review")
}

func TestFormatHistory_Empty(t *testing.T) {
	out := FormatHistory(nil, time.Now())
	assert.Contains(t, out, "No completed entries")
}

func TestFormatHistory_TotalsWorkedMinutes(t *testing.T) {
	now := time.Now().UTC()
	end := now.Add(-time.Hour)
	first := domain.NewTimeEntry("a", "u", end.Add(-time.Hour), nil, nil)
	_ = first.Close(end, nil)
	second := domain.NewTimeEntry("b", "u", end.Add(-2*time.Hour), nil, nil)
	_ = second.Close(end, nil)

	out := FormatHistory([]*domain.TimeEntry{first, second}, now)
	assert.Contains(t, out, "3h")
	assert.Contains(t, out, "2 entries")
}

func TestFormatSites_ShowsEffectiveRadius(t *testing.T) {
	sites := []*domain.Worksite{
		{ID: "12345678-aaaa", Name: "Depot", Latitude: 1, Longitude: 2},
		{ID: "87654321-bbbb", Name: "Tower", Latitude: 3, Longitude: 4, RadiusMeters: 75},
	}
	out := FormatSites(sites)
	assert.Contains(t, out, "Depot")
	assert.Contains(t, out, "200m", "default radius applies when unset")
	assert.Contains(t, out, "75m")
}

func TestFormatDrainResult_EmptyQueue(t *testing.T) {
	out := FormatDrainResult(service.DrainResult{}, service.QueueStatus{Online: true})
	assert.Contains(t, out, "Queue is empty")
}

func TestFormatDrainResult_MixedOutcome(t *testing.T) {
	out := FormatDrainResult(
		service.DrainResult{Applied: 2, Skipped: 1, Errors: 1},
		service.QueueStatus{Online: true, Pending: 2, Failed: 1},
	)
	assert.Contains(t, out, "2 applied")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1 need review")
}

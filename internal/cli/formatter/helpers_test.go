package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:59", FormatClock(59))
	assert.Equal(t, "00:01:00", FormatClock(60))
	assert.Equal(t, "01:01:05", FormatClock(3665))
	assert.Equal(t, "27:46:40", FormatClock(100000))
	assert.Equal(t, "00:00:00", FormatClock(-5))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "0m", FormatMinutes(-10))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "1h", FormatMinutes(60))
	assert.Equal(t, "2h 5m", FormatMinutes(125))
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "Just now", HumanTimestamp(now.Add(-30*time.Second)))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", HumanTimestamp(now.Add(-3*time.Hour)))
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, "40.74840, -73.98570", Coordinates(40.7484, -73.9857))
}

package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleAt(lat, lon float64) LocationSample {
	return LocationSample{Latitude: lat, Longitude: lon, CapturedAt: time.Now().UTC()}
}

func TestValidateGeofence_AtTarget(t *testing.T) {
	res := ValidateGeofence(sampleAt(52.52, 13.405), 52.52, 13.405, 200)
	assert.True(t, res.Valid)
	assert.InDelta(t, 0, res.DistanceMeters, 0.001)
}

func TestValidateGeofence_OutsideThreshold(t *testing.T) {
	// Roughly 500m north of the target.
	res := ValidateGeofence(sampleAt(52.5245, 13.405), 52.52, 13.405, 200)
	assert.False(t, res.Valid)
	assert.InDelta(t, 500, res.DistanceMeters, 10)
}

func TestValidateGeofence_InsideThreshold(t *testing.T) {
	// Roughly 111m north of the target.
	res := ValidateGeofence(sampleAt(52.521, 13.405), 52.52, 13.405, 200)
	assert.True(t, res.Valid)
	assert.InDelta(t, 111, res.DistanceMeters, 5)
}

func TestValidateGeofence_MalformedInput(t *testing.T) {
	cases := []struct {
		name   string
		sample LocationSample
		lat    float64
		lon    float64
		radius float64
	}{
		{"nan latitude", sampleAt(math.NaN(), 0), 0, 0, 200},
		{"inf longitude", sampleAt(0, math.Inf(1)), 0, 0, 200},
		{"latitude out of range", sampleAt(91, 0), 0, 0, 200},
		{"target longitude out of range", sampleAt(0, 0), 0, 181, 200},
		{"negative threshold", sampleAt(0, 0), 0, 0, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateGeofence(tc.sample, tc.lat, tc.lon, tc.radius)
			assert.False(t, res.Valid)
			assert.True(t, math.IsInf(res.DistanceMeters, 1))
		})
	}
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Berlin to Potsdam city centers, about 26km.
	d := HaversineMeters(52.5200, 13.4050, 52.3906, 13.0645)
	assert.InDelta(t, 27000, d, 2000)
}

func TestWorksite_EffectiveRadius(t *testing.T) {
	site := &Worksite{RadiusMeters: 75}
	assert.Equal(t, 75.0, site.EffectiveRadius())

	site.RadiusMeters = 0
	assert.Equal(t, DefaultGeofenceRadiusMeters, site.EffectiveRadius())
}

package domain

import "math"

const earthRadiusMeters = 6371000

// GeofenceResult is the verdict of a clock-in location check against a
// worksite geofence.
type GeofenceResult struct {
	Valid          bool    `json:"valid"`
	DistanceMeters float64 `json:"distance_meters"`
}

// HaversineMeters computes the great-circle distance in meters between
// two coordinate pairs.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateGeofence checks a sample against a circular geofence centered
// at (lat, lon). Malformed coordinates yield an invalid result with an
// infinite distance rather than an error.
func ValidateGeofence(sample LocationSample, lat, lon, thresholdMeters float64) GeofenceResult {
	if !validCoord(sample.Latitude, sample.Longitude) || !validCoord(lat, lon) || thresholdMeters < 0 || math.IsNaN(thresholdMeters) {
		return GeofenceResult{Valid: false, DistanceMeters: math.Inf(1)}
	}

	dist := HaversineMeters(sample.Latitude, sample.Longitude, lat, lon)
	return GeofenceResult{
		Valid:          dist <= thresholdMeters,
		DistanceMeters: dist,
	}
}

func validCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

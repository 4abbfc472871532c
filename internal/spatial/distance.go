package spatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineKm calculates the great-circle distance between two points in
// kilometers using the Haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	// Floating error can push a just outside [0,1] for antipodal or
	// identical points, which would make Sqrt/Asin return NaN.
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ValidateCoordinate checks that a latitude/longitude pair lies within the
// valid geographic ranges (±90, ±180). Out-of-range input is reported as an
// error rather than clamped.
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return fmt.Errorf("coordinate (%v, %v) is not a number", lat, lon)
	}
	ll := s2.LatLngFromDegrees(lat, lon)
	if !ll.IsValid() {
		return fmt.Errorf("coordinate (%v, %v) outside valid range", lat, lon)
	}
	return nil
}

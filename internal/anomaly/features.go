package anomaly

import (
	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/spatial"
)

const (
	secondsPerHour = 3600.0
	secondsPerDay  = 86400.0
)

// DeriveFeatures computes the kinematic features for one trip. It is a pure
// function of the record: same input, same output, no mutation of the trip.
//
// Rates divide by driving time; a zero-duration trip yields zero rates
// rather than an error or infinity, since the downstream rules key on
// absolute thresholds, not rates.
func DeriveFeatures(trip *models.TripRecord) models.DerivedFeatures {
	haversine := spatial.HaversineKm(trip.StartLat, trip.StartLon, trip.EndLat, trip.EndLon)
	suddenSum := trip.SuddenSum()

	f := models.DerivedFeatures{
		DistanceHaversine:   haversine,
		DistanceDiff:        trip.DistanceKm - haversine,
		DrivingDurationDays: trip.DrivingTimeSec / secondsPerDay,
		SuddenSum:           suddenSum,
	}

	if trip.DrivingTimeSec > 0 {
		hours := trip.DrivingTimeSec / secondsPerHour
		f.DistancePerHour = trip.DistanceKm / hours
		f.SuddenPerHour = float64(suddenSum) / hours
	}

	return f
}

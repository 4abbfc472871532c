package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

func evalTrip(t *testing.T, trip models.TripRecord) models.FlagSet {
	t.Helper()
	f := DeriveFeatures(&trip)
	return EvaluateFlags(&trip, &f, DefaultThresholds)
}

func TestEvaluateFlags_SuspiciousDistance(t *testing.T) {
	// Reported 250 km against a 15 km straight line
	trip := models.TripRecord{
		TripID:          "a",
		DistanceKm:      250,
		DrivingTimeSec:  1800,
		SuddenStopCount: 5,
		EOT:             "N",
		TripPoint:       10,
	}
	features := models.DerivedFeatures{DistanceHaversine: 15, SuddenSum: 5}

	flags := EvaluateFlags(&trip, &features, DefaultThresholds)

	assert.True(t, flags.SuspiciousDistance)
	assert.True(t, flags.AnySuspicious)
}

func TestEvaluateFlags_DataIntegrityIssue(t *testing.T) {
	// Eventless 500 km drive, closed out with zero reward
	trip := models.TripRecord{
		TripID:         "b",
		StartLat:       37.5665,
		StartLon:       126.9780,
		EndLat:         35.1796,
		EndLon:         129.0756,
		DistanceKm:     500,
		DrivingTimeSec: 5 * 3600,
		EOT:            "Y",
		TripPoint:      0,
	}

	flags := evalTrip(t, trip)

	assert.True(t, flags.DataIntegrityIssue)
	assert.False(t, flags.ZeroSuddenOnly)
	assert.True(t, flags.AnySuspicious)
}

func TestEvaluateFlags_ZeroSuddenOnly(t *testing.T) {
	// Same eventless signature but normal trip accounting
	trip := models.TripRecord{
		TripID:         "c",
		StartLat:       37.5665,
		StartLon:       126.9780,
		EndLat:         35.1796,
		EndLon:         129.0756,
		DistanceKm:     500,
		DrivingTimeSec: 5000,
		EOT:            "N",
		TripPoint:      10,
	}

	flags := evalTrip(t, trip)

	assert.True(t, flags.ZeroSuddenOnly)
	assert.False(t, flags.DataIntegrityIssue)
	assert.True(t, flags.AnySuspicious)
}

func TestEvaluateFlags_ZeroSuddenByDurationAlone(t *testing.T) {
	// Short distance but over an hour of eventless driving
	trip := models.TripRecord{
		TripID:         "d",
		DistanceKm:     20,
		DrivingTimeSec: 2 * 3600,
		EOT:            "N",
		TripPoint:      5,
	}

	flags := evalTrip(t, trip)

	assert.True(t, flags.ZeroSuddenOnly)
}

func TestEvaluateFlags_CleanTrip(t *testing.T) {
	trip := models.TripRecord{
		TripID:          "e",
		DistanceKm:      12,
		DrivingTimeSec:  1200,
		SuddenStopCount: 2,
		EOT:             "Y",
		TripPoint:       30,
	}

	flags := evalTrip(t, trip)

	assert.Equal(t, models.FlagSet{}, flags)
}

func TestEvaluateFlags_UnknownEOTTreatedAsNotCompleted(t *testing.T) {
	trip := models.TripRecord{
		TripID:         "f",
		DistanceKm:     500,
		DrivingTimeSec: 5000,
		EOT:            "PENDING",
		TripPoint:      0,
	}

	flags := evalTrip(t, trip)

	// Not the completed marker, so zero reward does not make it a
	// data-integrity case.
	assert.False(t, flags.DataIntegrityIssue)
	assert.True(t, flags.ZeroSuddenOnly)
	assert.False(t, IsKnownEOT(trip.EOT))
}

func TestEvaluateFlags_MutualExclusivityAndUnion(t *testing.T) {
	// Sweep a grid of trips and check the structural laws on every one.
	distances := []float64{0, 20, 100, 101, 250, 500}
	durations := []float64{0, 1800, 3600, 3601, 5 * 3600}
	suddenCounts := []int{0, 1, 7}
	eots := []string{"Y", "N", ""}
	points := []int{0, 10}

	for _, dist := range distances {
		for _, dur := range durations {
			for _, sudden := range suddenCounts {
				for _, eot := range eots {
					for _, point := range points {
						trip := models.TripRecord{
							DistanceKm:      dist,
							DrivingTimeSec:  dur,
							SuddenStopCount: sudden,
							EOT:             eot,
							TripPoint:       point,
						}
						flags := evalTrip(t, trip)

						assert.False(t, flags.DataIntegrityIssue && flags.ZeroSuddenOnly,
							"integrity and zero-sudden-only must never co-occur: %+v", trip)
						assert.Equal(t,
							flags.SuspiciousDistance || flags.DataIntegrityIssue || flags.ZeroSuddenOnly,
							flags.AnySuspicious,
							"any_suspicious must be the union: %+v", trip)
					}
				}
			}
		}
	}
}

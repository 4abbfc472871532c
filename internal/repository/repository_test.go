package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrisk/telematics-backend-go/internal/database"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTrips() []models.TripRecord {
	return []models.TripRecord{
		{TripID: "t1", UserID: "u1", StartLat: 37.5, StartLon: 127.0, EndLat: 37.55, EndLon: 127.05,
			DistanceKm: 9, DrivingTimeSec: 1200, SuddenStopCount: 1, EOT: "Y", TripPoint: 20},
		{TripID: "t2", UserID: "u1", StartLat: 37.5, StartLon: 127.0, EndLat: 37.55, EndLon: 127.05,
			DistanceKm: 250, DrivingTimeSec: 1800, SuddenStopCount: 2, EOT: "Y", TripPoint: 20},
		{TripID: "t3", UserID: "u2", StartLat: 37.5, StartLon: 127.0, EndLat: 35.18, EndLon: 129.08,
			DistanceKm: 500, DrivingTimeSec: 18000, EOT: "Y", TripPoint: 0},
	}
}

func TestTripRepository_ReplaceAllAndGetAll(t *testing.T) {
	db := testDB(t)
	repo := NewTripRepository(db)

	require.NoError(t, repo.ReplaceAll(sampleTrips()))

	trips, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, trips, 3)
	assert.Equal(t, "t1", trips[0].TripID)
	assert.Equal(t, "t3", trips[2].TripID)
	assert.Equal(t, 500.0, trips[2].DistanceKm)

	// Re-ingestion replaces, not appends
	require.NoError(t, repo.ReplaceAll(sampleTrips()[:1]))
	trips, err = repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestTripRepository_GetTripsFilter(t *testing.T) {
	db := testDB(t)
	repo := NewTripRepository(db)
	require.NoError(t, repo.ReplaceAll(sampleTrips()))

	trips, total, err := repo.GetTrips(models.TripFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, trips, 2)

	trips, total, err = repo.GetTrips(models.TripFilter{MinDistance: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, trips, 2)
	assert.Equal(t, "t2", trips[0].TripID)
}

func TestRunRepository_Lifecycle(t *testing.T) {
	db := testDB(t)
	runs := NewRunRepository(db)

	id, err := runs.Create("trip_anomaly", `{"SuspiciousDistanceKm":100}`)
	require.NoError(t, err)

	require.NoError(t, runs.MarkRunning(id))
	run, err := runs.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.NotNil(t, run.StartedAt)

	require.NoError(t, runs.MarkCompleted(id, `{"total_trips":3}`))
	run, err = runs.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, `{"total_trips":3}`, run.ResultSummary)

	latest, err := runs.LatestCompleted("trip_anomaly")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)

	none, err := runs.LatestCompleted("other_analyzer")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRunRepository_MarkFailed(t *testing.T) {
	db := testDB(t)
	runs := NewRunRepository(db)

	id, err := runs.Create("trip_anomaly", "")
	require.NoError(t, err)
	require.NoError(t, runs.MarkFailed(id, "boom"))

	run, err := runs.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "boom", run.ErrorMessage)

	latest, err := runs.LatestCompleted("trip_anomaly")
	require.NoError(t, err)
	assert.Nil(t, latest, "failed runs must not count as completed")
}

func TestResultRepository_SaveAndGet(t *testing.T) {
	db := testDB(t)
	tripRepo := NewTripRepository(db)
	require.NoError(t, tripRepo.ReplaceAll(sampleTrips()))

	trips, err := tripRepo.GetAll()
	require.NoError(t, err)

	runs := NewRunRepository(db)
	runID, err := runs.Create("trip_anomaly", "")
	require.NoError(t, err)

	flagged := []models.FlaggedTrip{
		{
			TripRecord: trips[1],
			Features:   models.DerivedFeatures{DistanceHaversine: 7.2, DistanceDiff: 242.8, DistancePerHour: 500, SuddenSum: 2, SuddenPerHour: 4},
			Flags:      models.FlagSet{SuspiciousDistance: true, AnySuspicious: true},
		},
		{
			TripRecord: trips[2],
			Features:   models.DerivedFeatures{DistanceHaversine: 325, DistanceDiff: 175, DistancePerHour: 100},
			Flags:      models.FlagSet{DataIntegrityIssue: true, AnySuspicious: true},
		},
	}
	profiles := []models.UserRiskProfile{
		{UserID: "u1", TotalTrips: 2, SuspiciousTrips: 1, PctSuspicious: 50},
		{UserID: "u2", TotalTrips: 1, SuspiciousTrips: 1, PctSuspicious: 100},
	}

	results := NewResultRepository(db)
	require.NoError(t, results.SaveResults(runID, flagged, profiles))

	got, total, err := results.GetFlaggedTrips(runID, models.FlaggedTripFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	// Original insertion order preserved
	assert.Equal(t, "t2", got[0].TripID)
	assert.True(t, got[0].Flags.SuspiciousDistance)
	assert.False(t, got[0].Flags.DataIntegrityIssue)
	assert.Equal(t, 7.2, got[0].Features.DistanceHaversine)
	assert.Equal(t, "t3", got[1].TripID)
	assert.True(t, got[1].Flags.DataIntegrityIssue)

	// Flag filter
	yes := true
	got, total, err = results.GetFlaggedTrips(runID, models.FlaggedTripFilter{DataIntegrityIssue: &yes})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "t3", got[0].TripID)

	gotProfiles, total, err := results.GetUserProfiles(runID, models.UserProfileFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, gotProfiles, 2)

	filtered, _, err := results.GetUserProfiles(runID, models.UserProfileFilter{MinPctSuspicious: 80})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "u2", filtered[0].UserID)
}

package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

func sampleData() ([]models.FlaggedTrip, []models.UserRiskProfile) {
	flagged := []models.FlaggedTrip{
		{
			TripRecord: models.TripRecord{
				TripID: "t2", UserID: "u1",
				StartLat: 37.5, StartLon: 127.0, EndLat: 37.55, EndLon: 127.05,
				DistanceKm: 250, DrivingTimeSec: 1800,
				SuddenStopCount: 2, EOT: "Y", TripPoint: 20,
			},
			Flags: models.FlagSet{SuspiciousDistance: true, AnySuspicious: true},
		},
	}
	profiles := []models.UserRiskProfile{
		{UserID: "u1", TotalTrips: 10, SuspiciousTrips: 2, PctSuspicious: 20},
	}
	return flagged, profiles
}

func TestWorkbook_SheetsAndCells(t *testing.T) {
	flagged, profiles := sampleData()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, flagged, profiles))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{SheetFlaggedTrips, SheetUserIDs}, f.GetSheetList())

	// Header and first data row of Flagged_Trips
	tripID, err := f.GetCellValue(SheetFlaggedTrips, "A2")
	require.NoError(t, err)
	assert.Equal(t, "t2", tripID)

	suspicious, err := f.GetCellValue(SheetFlaggedTrips, "O2")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", suspicious)

	integrity, err := f.GetCellValue(SheetFlaggedTrips, "P2")
	require.NoError(t, err)
	assert.Equal(t, "FALSE", integrity)

	// User sheet
	rows, err := f.GetRows(SheetUserIDs)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"user_id", "total_trips", "suspicious_trips", "pct_suspicious"}, rows[0])
	assert.Equal(t, "u1", rows[1][0])
	assert.Equal(t, "20", rows[1][3])
}

func TestWorkbook_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetFlaggedTrips)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, "trip_id", rows[0][0])
}

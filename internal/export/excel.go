package export

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// Sheet names of the analyst workbook
const (
	SheetFlaggedTrips = "Flagged_Trips"
	SheetUserIDs      = "User_IDs"
)

var flaggedTripColumns = []string{
	"trip_id", "user_id",
	"start_lat", "start_lon", "end_lat", "end_lon",
	"distance", "driving_time",
	"sudden_start_count", "sudden_stop_count",
	"sudden_acceleration_count", "sudden_deceleration_count",
	"eot", "trip_point",
	"flag_suspicious_distance", "flag_data_integrity_issue",
	"flag_zero_sudden_only", "flag_any_suspicious",
}

var userColumns = []string{"user_id", "total_trips", "suspicious_trips", "pct_suspicious"}

// Workbook builds the two-sheet report workbook: Flagged_Trips with all
// original trip fields plus the four boolean flag columns, and User_IDs
// with one row per high-risk user. Rows keep the order they arrive in.
func Workbook(flagged []models.FlaggedTrip, profiles []models.UserRiskProfile) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeFlaggedSheet(f, flagged); err != nil {
		return nil, err
	}
	if err := writeUserSheet(f, profiles); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook opens on Flagged_Trips
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	return f, nil
}

// WriteFile materializes the workbook at the given path.
func WriteFile(path string, flagged []models.FlaggedTrip, profiles []models.UserRiskProfile) error {
	f, err := Workbook(flagged, profiles)
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	log.Printf("[Export] Wrote %s (%d flagged trips, %d users)", path, len(flagged), len(profiles))
	return nil
}

// Write streams the workbook to w (used by the export download endpoint).
func Write(w io.Writer, flagged []models.FlaggedTrip, profiles []models.UserRiskProfile) error {
	f, err := Workbook(flagged, profiles)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeFlaggedSheet(f *excelize.File, flagged []models.FlaggedTrip) error {
	if _, err := f.NewSheet(SheetFlaggedTrips); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetFlaggedTrips, err)
	}

	if err := writeRow(f, SheetFlaggedTrips, 1, toAny(flaggedTripColumns)); err != nil {
		return err
	}

	for i, trip := range flagged {
		row := []interface{}{
			trip.TripID, trip.UserID,
			trip.StartLat, trip.StartLon, trip.EndLat, trip.EndLon,
			trip.DistanceKm, trip.DrivingTimeSec,
			trip.SuddenStartCount, trip.SuddenStopCount,
			trip.SuddenAccelerationCount, trip.SuddenDecelerationCount,
			trip.EOT, trip.TripPoint,
			trip.Flags.SuspiciousDistance, trip.Flags.DataIntegrityIssue,
			trip.Flags.ZeroSuddenOnly, trip.Flags.AnySuspicious,
		}
		if err := writeRow(f, SheetFlaggedTrips, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeUserSheet(f *excelize.File, profiles []models.UserRiskProfile) error {
	if _, err := f.NewSheet(SheetUserIDs); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetUserIDs, err)
	}

	if err := writeRow(f, SheetUserIDs, 1, toAny(userColumns)); err != nil {
		return err
	}

	for i, p := range profiles {
		row := []interface{}{p.UserID, p.TotalTrips, p.SuspiciousTrips, p.PctSuspicious}
		if err := writeRow(f, SheetUserIDs, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell := "A" + strconv.Itoa(rowNum)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func toAny(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

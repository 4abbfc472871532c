package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// Required columns of the trip dataset. A missing column aborts the load
// before any row is read.
var requiredColumns = []string{
	"trip_id",
	"user_id",
	"start_lat",
	"start_lon",
	"end_lat",
	"end_lon",
	"distance",
	"driving_time",
	"sudden_start_count",
	"sudden_stop_count",
	"sudden_acceleration_count",
	"sudden_deceleration_count",
	"eot",
	"trip_point",
}

// Optional passthrough columns.
const (
	colTripSafetyScore = "trip_safety_score"
	colTripSeq         = "trip_seq"
)

// SchemaError reports missing or mistyped required columns. It aborts the
// whole run so the caller can fix the source data instead of re-running
// blind.
type SchemaError struct {
	Columns []string
	Detail  string
}

func (e *SchemaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("schema error in columns [%s]: %s", strings.Join(e.Columns, ", "), e.Detail)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// LoadFile reads a trip dataset from a CSV file.
func LoadFile(path string) ([]models.TripRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trip file: %w", err)
	}
	defer f.Close()

	trips, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return trips, nil
}

// Load reads a trip dataset from CSV. The header row is validated first:
// every missing required column is collected and reported by name in one
// error, before any record is parsed.
func Load(r io.Reader) ([]models.TripRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Columns: requiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Columns: missing}
	}

	var trips []models.TripRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		trip, err := parseRow(row, index)
		if err != nil {
			return nil, err
		}
		trip.ID = int64(len(trips) + 1)
		trips = append(trips, trip)
	}

	log.Printf("[Ingest] Loaded %d trip records", len(trips))
	return trips, nil
}

func parseRow(row []string, index map[string]int) (models.TripRecord, error) {
	var trip models.TripRecord
	var err error

	field := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	trip.TripID = field("trip_id")
	trip.UserID = field("user_id")
	trip.EOT = field("eot")

	floats := []struct {
		col string
		dst *float64
	}{
		{"start_lat", &trip.StartLat},
		{"start_lon", &trip.StartLon},
		{"end_lat", &trip.EndLat},
		{"end_lon", &trip.EndLon},
		{"distance", &trip.DistanceKm},
		{"driving_time", &trip.DrivingTimeSec},
	}
	for _, f := range floats {
		*f.dst, err = strconv.ParseFloat(field(f.col), 64)
		if err != nil {
			return trip, &SchemaError{
				Columns: []string{f.col},
				Detail:  fmt.Sprintf("trip %q: %v", trip.TripID, err),
			}
		}
	}

	ints := []struct {
		col string
		dst *int
	}{
		{"sudden_start_count", &trip.SuddenStartCount},
		{"sudden_stop_count", &trip.SuddenStopCount},
		{"sudden_acceleration_count", &trip.SuddenAccelerationCount},
		{"sudden_deceleration_count", &trip.SuddenDecelerationCount},
		{"trip_point", &trip.TripPoint},
	}
	for _, f := range ints {
		*f.dst, err = strconv.Atoi(field(f.col))
		if err != nil {
			return trip, &SchemaError{
				Columns: []string{f.col},
				Detail:  fmt.Sprintf("trip %q: %v", trip.TripID, err),
			}
		}
	}

	// Optional passthrough columns, blank cells allowed
	if i, ok := index[colTripSafetyScore]; ok && i < len(row) && strings.TrimSpace(row[i]) != "" {
		trip.TripSafetyScore, err = strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return trip, &SchemaError{
				Columns: []string{colTripSafetyScore},
				Detail:  fmt.Sprintf("trip %q: %v", trip.TripID, err),
			}
		}
	}
	if i, ok := index[colTripSeq]; ok && i < len(row) && strings.TrimSpace(row[i]) != "" {
		trip.TripSeq, err = strconv.Atoi(strings.TrimSpace(row[i]))
		if err != nil {
			return trip, &SchemaError{
				Columns: []string{colTripSeq},
				Detail:  fmt.Sprintf("trip %q: %v", trip.TripID, err),
			}
		}
	}

	return trip, nil
}

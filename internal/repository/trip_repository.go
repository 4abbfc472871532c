package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fleetrisk/telematics-backend-go/internal/database"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

const tripColumns = `id, trip_id, user_id, start_lat, start_lon, end_lat, end_lon,
	distance_km, driving_time,
	sudden_start_count, sudden_stop_count, sudden_acceleration_count, sudden_deceleration_count,
	eot, trip_point, trip_safety_score, trip_seq`

// TripRepository handles database operations for ingested trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// ReplaceAll replaces the ingested trip set with a new batch in one
// transaction. The batch is one analysis dataset; partial ingestion is
// never left behind.
func (r *TripRepository) ReplaceAll(trips []models.TripRecord) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM flagged_trips"); err != nil {
			return fmt.Errorf("failed to clear flagged trips: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM user_risk_profiles"); err != nil {
			return fmt.Errorf("failed to clear user profiles: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM trips"); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO trips (trip_id, user_id, start_lat, start_lon, end_lat, end_lon,
				distance_km, driving_time,
				sudden_start_count, sudden_stop_count, sudden_acceleration_count, sudden_deceleration_count,
				eot, trip_point, trip_safety_score, trip_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range trips {
			t := &trips[i]
			if _, err := stmt.Exec(
				t.TripID, t.UserID, t.StartLat, t.StartLon, t.EndLat, t.EndLon,
				t.DistanceKm, t.DrivingTimeSec,
				t.SuddenStartCount, t.SuddenStopCount, t.SuddenAccelerationCount, t.SuddenDecelerationCount,
				t.EOT, t.TripPoint, t.TripSafetyScore, t.TripSeq,
			); err != nil {
				return fmt.Errorf("failed to insert trip %s: %w", t.TripID, err)
			}
		}
		return nil
	})
}

// GetAll returns every ingested trip in insertion order.
func (r *TripRepository) GetAll() ([]models.TripRecord, error) {
	query := "SELECT " + tripColumns + " FROM trips ORDER BY id"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	return scanTrips(rows)
}

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(filter models.TripFilter) ([]models.TripRecord, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.MinDistance > 0 {
		conditions = append(conditions, "distance_km >= ?")
		args = append(args, filter.MinDistance)
	}
	if filter.MinDuration > 0 {
		conditions = append(conditions, "driving_time >= ?")
		args = append(args, filter.MinDuration)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT " + tripColumns + " FROM trips" + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	trips, err := scanTrips(rows)
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func scanTrips(rows *sql.Rows) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	for rows.Next() {
		var t models.TripRecord
		if err := rows.Scan(
			&t.ID, &t.TripID, &t.UserID, &t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
			&t.DistanceKm, &t.DrivingTimeSec,
			&t.SuddenStartCount, &t.SuddenStopCount, &t.SuddenAccelerationCount, &t.SuddenDecelerationCount,
			&t.EOT, &t.TripPoint, &t.TripSafetyScore, &t.TripSeq,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trips: %w", err)
	}
	return trips, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	// -1 disables pagination (workbook export reads whole runs)
	if pageSize == -1 {
		return page, 1 << 30
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}

package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fleetrisk/telematics-backend-go/internal/database"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// ResultRepository handles database operations for analysis results:
// flagged trips and user risk profiles.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveResults stores the flagged trips and user profiles of one run in a
// single transaction.
func (r *ResultRepository) SaveResults(runID int64, flagged []models.FlaggedTrip, profiles []models.UserRiskProfile) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		flagStmt, err := tx.Prepare(`
			INSERT INTO flagged_trips (run_id, trip_row_id,
				distance_haversine, distance_diff, distance_per_hour, sudden_sum, sudden_per_hour,
				flag_suspicious_distance, flag_data_integrity_issue, flag_zero_sudden_only, flag_any_suspicious)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare flagged insert: %w", err)
		}
		defer flagStmt.Close()

		for i := range flagged {
			ft := &flagged[i]
			if _, err := flagStmt.Exec(
				runID, ft.ID,
				ft.Features.DistanceHaversine, ft.Features.DistanceDiff,
				ft.Features.DistancePerHour, ft.Features.SuddenSum, ft.Features.SuddenPerHour,
				boolToInt(ft.Flags.SuspiciousDistance), boolToInt(ft.Flags.DataIntegrityIssue),
				boolToInt(ft.Flags.ZeroSuddenOnly), boolToInt(ft.Flags.AnySuspicious),
			); err != nil {
				return fmt.Errorf("failed to insert flagged trip %s: %w", ft.TripID, err)
			}
		}

		profileStmt, err := tx.Prepare(`
			INSERT INTO user_risk_profiles (run_id, user_id, total_trips, suspicious_trips, pct_suspicious)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare profile insert: %w", err)
		}
		defer profileStmt.Close()

		for _, p := range profiles {
			if _, err := profileStmt.Exec(runID, p.UserID, p.TotalTrips, p.SuspiciousTrips, p.PctSuspicious); err != nil {
				return fmt.Errorf("failed to insert profile for user %s: %w", p.UserID, err)
			}
		}

		return nil
	})
}

// GetFlaggedTrips returns the flagged trips of one run joined back to their
// original records. Ordering follows the original trip insertion order, the
// same order the trips entered the pipeline.
func (r *ResultRepository) GetFlaggedTrips(runID int64, filter models.FlaggedTripFilter) ([]models.FlaggedTrip, int64, error) {
	conditions := []string{"f.run_id = ?"}
	args := []interface{}{runID}

	if filter.UserID != "" {
		conditions = append(conditions, "t.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.SuspiciousDistance != nil {
		conditions = append(conditions, "f.flag_suspicious_distance = ?")
		args = append(args, boolToInt(*filter.SuspiciousDistance))
	}
	if filter.DataIntegrityIssue != nil {
		conditions = append(conditions, "f.flag_data_integrity_issue = ?")
		args = append(args, boolToInt(*filter.DataIntegrityIssue))
	}
	if filter.ZeroSuddenOnly != nil {
		conditions = append(conditions, "f.flag_zero_sudden_only = ?")
		args = append(args, boolToInt(*filter.ZeroSuddenOnly))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM flagged_trips f JOIN trips t ON t.id = f.trip_row_id" + where
	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged trips: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `
		SELECT t.id, t.trip_id, t.user_id, t.start_lat, t.start_lon, t.end_lat, t.end_lon,
			t.distance_km, t.driving_time,
			t.sudden_start_count, t.sudden_stop_count, t.sudden_acceleration_count, t.sudden_deceleration_count,
			t.eot, t.trip_point, t.trip_safety_score, t.trip_seq,
			f.distance_haversine, f.distance_diff, f.distance_per_hour, f.sudden_sum, f.sudden_per_hour,
			f.flag_suspicious_distance, f.flag_data_integrity_issue, f.flag_zero_sudden_only, f.flag_any_suspicious
		FROM flagged_trips f
		JOIN trips t ON t.id = f.trip_row_id` + where + `
		ORDER BY t.id LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query flagged trips: %w", err)
	}
	defer rows.Close()

	var flagged []models.FlaggedTrip
	for rows.Next() {
		var ft models.FlaggedTrip
		var susp, integ, zero, any int
		if err := rows.Scan(
			&ft.ID, &ft.TripID, &ft.UserID, &ft.StartLat, &ft.StartLon, &ft.EndLat, &ft.EndLon,
			&ft.DistanceKm, &ft.DrivingTimeSec,
			&ft.SuddenStartCount, &ft.SuddenStopCount, &ft.SuddenAccelerationCount, &ft.SuddenDecelerationCount,
			&ft.EOT, &ft.TripPoint, &ft.TripSafetyScore, &ft.TripSeq,
			&ft.Features.DistanceHaversine, &ft.Features.DistanceDiff,
			&ft.Features.DistancePerHour, &ft.Features.SuddenSum, &ft.Features.SuddenPerHour,
			&susp, &integ, &zero, &any,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan flagged trip: %w", err)
		}
		ft.Features.DrivingDurationDays = ft.DrivingTimeSec / 86400
		ft.Flags = models.FlagSet{
			SuspiciousDistance: susp != 0,
			DataIntegrityIssue: integ != 0,
			ZeroSuddenOnly:     zero != 0,
			AnySuspicious:      any != 0,
		}
		flagged = append(flagged, ft)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read flagged trips: %w", err)
	}

	return flagged, total, nil
}

// GetUserProfiles returns the user risk profiles of one run, sorted by
// descending suspicious trip count.
func (r *ResultRepository) GetUserProfiles(runID int64, filter models.UserProfileFilter) ([]models.UserRiskProfile, int64, error) {
	conditions := []string{"run_id = ?"}
	args := []interface{}{runID}

	if filter.MinSuspiciousTrips > 0 {
		conditions = append(conditions, "suspicious_trips >= ?")
		args = append(args, filter.MinSuspiciousTrips)
	}
	if filter.MinPctSuspicious > 0 {
		conditions = append(conditions, "pct_suspicious >= ?")
		args = append(args, filter.MinPctSuspicious)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM user_risk_profiles"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `
		SELECT user_id, total_trips, suspicious_trips, pct_suspicious
		FROM user_risk_profiles` + where + `
		ORDER BY suspicious_trips DESC, id LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserRiskProfile
	for rows.Next() {
		var p models.UserRiskProfile
		if err := rows.Scan(&p.UserID, &p.TotalTrips, &p.SuspiciousTrips, &p.PctSuspicious); err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read profiles: %w", err)
	}

	return profiles, total, nil
}

// AllFlaggedTrips returns every flagged trip of one run in original trip
// order, without pagination. Used by the workbook export.
func (r *ResultRepository) AllFlaggedTrips(runID int64) ([]models.FlaggedTrip, error) {
	flagged, _, err := r.GetFlaggedTrips(runID, models.FlaggedTripFilter{PageSize: -1})
	return flagged, err
}

// AllUserProfiles returns every user profile of one run without pagination.
func (r *ResultRepository) AllUserProfiles(runID int64) ([]models.UserRiskProfile, error) {
	profiles, _, err := r.GetUserProfiles(runID, models.UserProfileFilter{PageSize: -1})
	return profiles, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

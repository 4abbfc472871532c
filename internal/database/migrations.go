package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents one schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_trips",
		SQL: `
			CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trip_id TEXT NOT NULL UNIQUE,
				user_id TEXT NOT NULL,
				start_lat REAL NOT NULL,
				start_lon REAL NOT NULL,
				end_lat REAL NOT NULL,
				end_lon REAL NOT NULL,
				distance_km REAL NOT NULL,
				driving_time REAL NOT NULL,
				sudden_start_count INTEGER NOT NULL DEFAULT 0,
				sudden_stop_count INTEGER NOT NULL DEFAULT 0,
				sudden_acceleration_count INTEGER NOT NULL DEFAULT 0,
				sudden_deceleration_count INTEGER NOT NULL DEFAULT 0,
				eot TEXT NOT NULL DEFAULT '',
				trip_point INTEGER NOT NULL DEFAULT 0,
				trip_safety_score REAL NOT NULL DEFAULT 0,
				trip_seq INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_trips_user ON trips(user_id);
		`,
	},
	{
		Version: 2,
		Name:    "create_analysis_runs",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				analyzer TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				thresholds_json TEXT,
				result_summary TEXT,
				error_message TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_flagged_trips",
		SQL: `
			CREATE TABLE IF NOT EXISTS flagged_trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL REFERENCES analysis_runs(id),
				trip_row_id INTEGER NOT NULL REFERENCES trips(id),
				distance_haversine REAL NOT NULL,
				distance_diff REAL NOT NULL,
				distance_per_hour REAL NOT NULL,
				sudden_sum INTEGER NOT NULL,
				sudden_per_hour REAL NOT NULL,
				flag_suspicious_distance INTEGER NOT NULL,
				flag_data_integrity_issue INTEGER NOT NULL,
				flag_zero_sudden_only INTEGER NOT NULL,
				flag_any_suspicious INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_flagged_run ON flagged_trips(run_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_user_risk_profiles",
		SQL: `
			CREATE TABLE IF NOT EXISTS user_risk_profiles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL REFERENCES analysis_runs(id),
				user_id TEXT NOT NULL,
				total_trips INTEGER NOT NULL,
				suspicious_trips INTEGER NOT NULL,
				pct_suspicious REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_profiles_run ON user_risk_profiles(run_id);
		`,
	},
}

// Migrate applies all pending migrations in version order.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		log.Printf("[Database] Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

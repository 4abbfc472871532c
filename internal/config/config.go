package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
)

// Config holds the application configuration, read once at startup.
type Config struct {
	Port       string
	DBPath     string
	Thresholds anomaly.Thresholds
}

// Load reads configuration from the environment, falling back to defaults.
// Threshold overrides are applied here; after Load the thresholds are fixed
// for the lifetime of the process.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/trips.db"
	}

	th := anomaly.DefaultThresholds
	overrides := []struct {
		env string
		dst *float64
	}{
		{"MIN_DRIVING_TIME_SEC", &th.MinDrivingTimeSec},
		{"MIN_DISTANCE_KM", &th.MinDistanceKm},
		{"SUSPICIOUS_DISTANCE_KM", &th.SuspiciousDistanceKm},
		{"SUSPICIOUS_HAVERSINE_KM", &th.SuspiciousHaversineKm},
		{"SUBSTANTIAL_DISTANCE_KM", &th.SubstantialDistanceKm},
		{"SUBSTANTIAL_TIME_SEC", &th.SubstantialTimeSec},
	}
	for _, o := range overrides {
		raw := os.Getenv(o.env)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", o.env, raw, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid %s: must be non-negative, got %v", o.env, v)
		}
		*o.dst = v
	}

	return &Config{
		Port:       port,
		DBPath:     dbPath,
		Thresholds: th,
	}, nil
}

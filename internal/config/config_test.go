package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "./data/trips.db", cfg.DBPath)
	assert.Equal(t, anomaly.DefaultThresholds, cfg.Thresholds)
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	t.Setenv("SUSPICIOUS_DISTANCE_KM", "150")
	t.Setenv("SUBSTANTIAL_TIME_SEC", "7200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Thresholds.SuspiciousDistanceKm)
	assert.Equal(t, 7200.0, cfg.Thresholds.SubstantialTimeSec)
	// Untouched fields keep their defaults
	assert.Equal(t, anomaly.DefaultThresholds.SuspiciousHaversineKm, cfg.Thresholds.SuspiciousHaversineKm)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("SUSPICIOUS_DISTANCE_KM", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUSPICIOUS_DISTANCE_KM")
}

func TestLoad_NegativeThreshold(t *testing.T) {
	t.Setenv("MIN_DISTANCE_KM", "-1")

	_, err := Load()
	require.Error(t, err)
}

package models

// TripRecord represents one recorded driving event as ingested from the
// telematics source. It is never mutated after ingestion.
type TripRecord struct {
	ID int64 `json:"id" db:"id"`

	// Identity
	TripID string `json:"trip_id" db:"trip_id"` // unique per trip
	UserID string `json:"user_id" db:"user_id"` // many trips per user

	// Geometry (degrees)
	StartLat float64 `json:"start_lat" db:"start_lat"`
	StartLon float64 `json:"start_lon" db:"start_lon"`
	EndLat   float64 `json:"end_lat" db:"end_lat"`
	EndLon   float64 `json:"end_lon" db:"end_lon"`

	// Reported metrics
	DistanceKm     float64 `json:"distance" db:"distance_km"`      // odometer-derived, km
	DrivingTimeSec float64 `json:"driving_time" db:"driving_time"` // seconds

	// Sudden event counters
	SuddenStartCount        int `json:"sudden_start_count" db:"sudden_start_count"`
	SuddenStopCount         int `json:"sudden_stop_count" db:"sudden_stop_count"`
	SuddenAccelerationCount int `json:"sudden_acceleration_count" db:"sudden_acceleration_count"`
	SuddenDecelerationCount int `json:"sudden_deceleration_count" db:"sudden_deceleration_count"`

	// Completion markers
	EOT       string `json:"eot" db:"eot"`               // 'Y' means properly closed out
	TripPoint int    `json:"trip_point" db:"trip_point"` // reward score

	// Passthrough fields, not computed here
	TripSafetyScore float64 `json:"trip_safety_score,omitempty" db:"trip_safety_score"`
	TripSeq         int     `json:"trip_seq,omitempty" db:"trip_seq"`
}

// EOTCompleted is the canonical "trip properly closed out" marker.
// Any other value is treated as not completed.
const EOTCompleted = "Y"

// SuddenSum returns the total count of sudden driving events for the trip.
func (t *TripRecord) SuddenSum() int {
	return t.SuddenStartCount + t.SuddenStopCount +
		t.SuddenAccelerationCount + t.SuddenDecelerationCount
}

// DerivedFeatures holds the kinematic features computed from one TripRecord.
// A DerivedFeatures value is a pure function of its record and is never
// mutated once produced.
type DerivedFeatures struct {
	DistanceHaversine   float64 `json:"distance_haversine"`    // km, start to end great circle
	DistanceDiff        float64 `json:"distance_diff"`         // reported minus haversine
	DrivingDurationDays float64 `json:"driving_duration_days"` // driving_time / 86400
	DistancePerHour     float64 `json:"distance_per_hour"`     // 0 when driving_time is 0
	SuddenSum           int     `json:"sudden_sum"`
	SuddenPerHour       float64 `json:"sudden_per_hour"` // 0 when driving_time is 0
}

// FlagSet holds the anomaly predicate results for one trip.
// AnySuspicious is always the OR of the other three and is recomputed from
// them, never stored independently.
type FlagSet struct {
	SuspiciousDistance bool `json:"flag_suspicious_distance"`
	DataIntegrityIssue bool `json:"flag_data_integrity_issue"`
	ZeroSuddenOnly     bool `json:"flag_zero_sudden_only"`
	AnySuspicious      bool `json:"flag_any_suspicious"`
}

// FlaggedTrip pairs a trip with its derived features and flags. The
// flagged-trip output table is built from these, preserving input order.
type FlaggedTrip struct {
	TripRecord
	Features DerivedFeatures `json:"features"`
	Flags    FlagSet         `json:"flags"`
}

// ExcludedTrip records a trip dropped before feature derivation, with the
// reason it was dropped (currently only out-of-range coordinates).
type ExcludedTrip struct {
	TripID string `json:"trip_id"`
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

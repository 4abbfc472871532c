package anomaly

// Thresholds defines the configurable cutoffs for the anomaly rules. A
// Thresholds value is frozen when a run starts and read-only for its
// duration.
type Thresholds struct {
	MinDrivingTimeSec     float64 // minimum duration for a trip to count as real driving
	MinDistanceKm         float64 // minimum reported distance for a trip to count as real driving
	SuspiciousDistanceKm  float64 // reported distance above this is suspect...
	SuspiciousHaversineKm float64 // ...when the straight-line distance is below this
	SubstantialDistanceKm float64 // distance above which an eventless trip is implausible
	SubstantialTimeSec    float64 // duration above which an eventless trip is implausible
}

// DefaultThresholds provides the default rule cutoffs, calibrated against
// the reference batch of tens of thousands of trips.
var DefaultThresholds = Thresholds{
	MinDrivingTimeSec:     60,     // 1 minute
	MinDistanceKm:         0.5,    // 500 meters
	SuspiciousDistanceKm:  100.0,  // 100 km reported
	SuspiciousHaversineKm: 30.0,   // 30 km straight line
	SubstantialDistanceKm: 100.0,  // 100 km with zero sudden events
	SubstantialTimeSec:    3600.0, // 1 hour with zero sudden events
}

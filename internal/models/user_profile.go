package models

// UserRiskProfile is the per-user aggregation of flagged trips. Only users
// with at least one suspicious trip get a profile; users with none are
// excluded entirely rather than emitted with zeros.
type UserRiskProfile struct {
	UserID          string  `json:"user_id" db:"user_id"`
	TotalTrips      int     `json:"total_trips" db:"total_trips"`           // all trips, flagged or not
	SuspiciousTrips int     `json:"suspicious_trips" db:"suspicious_trips"` // trips with flag_any_suspicious
	PctSuspicious   float64 `json:"pct_suspicious" db:"pct_suspicious"`     // 100 * suspicious / total
}

// FleetSummary provides fleet-level statistics over the user profiles of
// one analysis run.
type FleetSummary struct {
	TotalTrips    int     `json:"total_trips"`
	FlaggedTrips  int     `json:"flagged_trips"`
	ExcludedTrips int     `json:"excluded_trips"`
	HighRiskUsers int     `json:"high_risk_users"`
	MeanPctSusp   float64 `json:"mean_pct_suspicious"`
	MedianPctSusp float64 `json:"median_pct_suspicious"`
	P95PctSusp    float64 `json:"p95_pct_suspicious"`
	MaxPctSusp    float64 `json:"max_pct_suspicious"`
}

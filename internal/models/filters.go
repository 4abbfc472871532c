package models

// TripFilter represents filter parameters for querying ingested trips
type TripFilter struct {
	UserID      string  `form:"userId"`
	MinDistance float64 `form:"minDistance"` // km
	MinDuration float64 `form:"minDuration"` // seconds
	Page        int     `form:"page"`
	PageSize    int     `form:"pageSize"`
}

// FlaggedTripFilter represents filter parameters for querying flagged trips
type FlaggedTripFilter struct {
	UserID             string `form:"userId"`
	SuspiciousDistance *bool  `form:"suspiciousDistance"`
	DataIntegrityIssue *bool  `form:"dataIntegrityIssue"`
	ZeroSuddenOnly     *bool  `form:"zeroSuddenOnly"`
	Page               int    `form:"page"`
	PageSize           int    `form:"pageSize"`
}

// UserProfileFilter represents filter parameters for querying user risk profiles
type UserProfileFilter struct {
	MinSuspiciousTrips int     `form:"minSuspiciousTrips"`
	MinPctSuspicious   float64 `form:"minPctSuspicious"`
	Page               int     `form:"page"`
	PageSize           int     `form:"pageSize"`
}

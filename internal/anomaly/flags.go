package anomaly

import (
	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// EvaluateFlags evaluates the anomaly rules for one trip against the given
// thresholds and returns the resulting flag set.
//
// The zero-sudden population is partitioned into two disjoint flags:
// DataIntegrityIssue covers trips closed out with zero reward despite a
// clean, eventless drive (looks like a system error), ZeroSuddenOnly covers
// the same eventless signature with otherwise normal trip accounting (looks
// like an impossible drive). No trip can carry both. SuspiciousDistance is
// independent and may co-occur with either.
func EvaluateFlags(trip *models.TripRecord, features *models.DerivedFeatures, th Thresholds) models.FlagSet {
	zeroSudden := features.SuddenSum == 0 &&
		(trip.DistanceKm > th.SubstantialDistanceKm || trip.DrivingTimeSec > th.SubstantialTimeSec)

	eotZeroPoint := trip.EOT == models.EOTCompleted && trip.TripPoint == 0

	var flags models.FlagSet
	flags.SuspiciousDistance = trip.DistanceKm > th.SuspiciousDistanceKm &&
		features.DistanceHaversine < th.SuspiciousHaversineKm
	flags.DataIntegrityIssue = zeroSudden && eotZeroPoint
	flags.ZeroSuddenOnly = zeroSudden && !eotZeroPoint
	flags.AnySuspicious = flags.SuspiciousDistance || flags.DataIntegrityIssue || flags.ZeroSuddenOnly

	return flags
}

// IsKnownEOT reports whether the EOT marker is inside the expected
// two-state domain. Anything else is still evaluated (as not completed) but
// is worth a data-quality log line.
func IsKnownEOT(eot string) bool {
	return eot == models.EOTCompleted || eot == "N"
}

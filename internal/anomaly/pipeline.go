package anomaly

import (
	"log"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/spatial"
)

// Result holds the full output of one pipeline run.
type Result struct {
	FlaggedTrips []models.FlaggedTrip
	UserProfiles []models.UserRiskProfile
	Excluded     []models.ExcludedTrip
	TotalTrips   int // trips that entered evaluation (after exclusions)
}

// Run executes the feature-derivation and rule-evaluation pipeline over one
// in-memory batch of trips. Thresholds are frozen for the run.
//
// Trips with coordinates outside the valid geographic ranges are excluded
// before feature derivation with a recorded reason; they never reach rule
// evaluation or the per-user totals. This keeps the exclusion policy
// uniform instead of coercing bad geometry into plausible distances.
func Run(trips []models.TripRecord, th Thresholds) *Result {
	res := &Result{}

	valid := make([]models.TripRecord, 0, len(trips))
	for i := range trips {
		if err := validGeometry(&trips[i]); err != nil {
			res.Excluded = append(res.Excluded, models.ExcludedTrip{
				TripID: trips[i].TripID,
				UserID: trips[i].UserID,
				Reason: err.Error(),
			})
			continue
		}
		valid = append(valid, trips[i])
	}
	if len(res.Excluded) > 0 {
		log.Printf("[Pipeline] Excluded %d trips with out-of-range coordinates", len(res.Excluded))
	}

	features := make([]models.DerivedFeatures, len(valid))
	flags := make([]models.FlagSet, len(valid))
	unknownEOT := 0
	belowMinimum := 0
	for i := range valid {
		features[i] = DeriveFeatures(&valid[i])
		flags[i] = EvaluateFlags(&valid[i], &features[i], th)
		if !IsKnownEOT(valid[i].EOT) {
			unknownEOT++
		}
		if valid[i].DrivingTimeSec < th.MinDrivingTimeSec || valid[i].DistanceKm < th.MinDistanceKm {
			belowMinimum++
		}
	}
	if belowMinimum > 0 {
		// Observation only; sub-minimal trips still go through the rules.
		log.Printf("[Pipeline] %d trips below minimum driving activity (<%vs or <%vkm)",
			belowMinimum, th.MinDrivingTimeSec, th.MinDistanceKm)
	}
	if unknownEOT > 0 {
		// Data-quality observation only; unknown markers are evaluated
		// as not completed and the run proceeds.
		log.Printf("[Pipeline] %d trips carry an unrecognized eot marker (treated as not completed)", unknownEOT)
	}

	res.TotalTrips = len(valid)
	res.FlaggedTrips = AssembleFlaggedTrips(valid, features, flags)
	res.UserProfiles = AggregateUsers(valid, flags)

	log.Printf("[Pipeline] Evaluated %d trips: %d flagged, %d high-risk users",
		res.TotalTrips, len(res.FlaggedTrips), len(res.UserProfiles))

	return res
}

func validGeometry(trip *models.TripRecord) error {
	if err := spatial.ValidateCoordinate(trip.StartLat, trip.StartLon); err != nil {
		return err
	}
	return spatial.ValidateCoordinate(trip.EndLat, trip.EndLon)
}

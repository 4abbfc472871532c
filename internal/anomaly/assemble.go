package anomaly

import (
	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// AssembleFlaggedTrips builds the flagged-trip output table: every trip
// with AnySuspicious set, carrying all original fields plus features and
// flags. The filter is stable, preserving the original input order; no
// recomputation happens here.
func AssembleFlaggedTrips(trips []models.TripRecord, features []models.DerivedFeatures, flags []models.FlagSet) []models.FlaggedTrip {
	var flagged []models.FlaggedTrip
	for i := range trips {
		if !flags[i].AnySuspicious {
			continue
		}
		flagged = append(flagged, models.FlaggedTrip{
			TripRecord: trips[i],
			Features:   features[i],
			Flags:      flags[i],
		})
	}
	return flagged
}

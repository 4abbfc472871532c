package anomaly

import (
	"sort"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
)

// AggregateUsers groups every evaluated trip by user and builds one risk
// profile per user that has at least one suspicious trip. TotalTrips counts
// all of the user's trips regardless of flag state; users with zero
// suspicious trips are excluded from the output entirely.
//
// Output is sorted by descending SuspiciousTrips (stable, ties keep first
// appearance order). The sort is presentation only, not a correctness
// requirement for callers.
func AggregateUsers(trips []models.TripRecord, flags []models.FlagSet) []models.UserRiskProfile {
	type bucket struct {
		total      int
		suspicious int
		order      int // first-appearance index, for a stable tiebreak
	}

	buckets := make(map[string]*bucket)
	var userOrder []string

	for i := range trips {
		b, ok := buckets[trips[i].UserID]
		if !ok {
			b = &bucket{order: len(userOrder)}
			buckets[trips[i].UserID] = b
			userOrder = append(userOrder, trips[i].UserID)
		}
		b.total++
		if flags[i].AnySuspicious {
			b.suspicious++
		}
	}

	var profiles []models.UserRiskProfile
	for _, userID := range userOrder {
		b := buckets[userID]
		if b.suspicious == 0 {
			continue
		}
		profiles = append(profiles, models.UserRiskProfile{
			UserID:          userID,
			TotalTrips:      b.total,
			SuspiciousTrips: b.suspicious,
			// total is always >= 1 here: a user only appears with at
			// least one trip, so the ratio is well defined.
			PctSuspicious: 100 * float64(b.suspicious) / float64(b.total),
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].SuspiciousTrips > profiles[j].SuspiciousTrips
	})

	return profiles
}

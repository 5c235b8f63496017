package recommender

import (
	"math"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// Budget tier ceilings, evaluated in this priority order when deriving a
// limit from user profile flags.
const (
	budgetCeilingUnder25K  = 25000
	budgetCeiling25KTo50K  = 50000
	budgetCeiling50KTo100K = 100000
	budgetCeilingAbove100K = 200000
)

// EstimateLocationCosts joins reviews with trips on user identifier and
// averages the matched trip costs per location. Every trip of a reviewing
// user contributes to every location that user reviewed. Locations with
// no matched trips are absent from the result; the budget filter treats
// absence as failing the check.
func EstimateLocationCosts(reviews []models.Review, trips []models.Trip) map[int64]float64 {
	tripsByUser := make(map[int64][]float64)
	for _, t := range trips {
		tripsByUser[t.UserID] = append(tripsByUser[t.UserID], t.Cost)
	}

	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range reviews {
		for _, cost := range tripsByUser[r.UserID] {
			sums[r.LocationID] += cost
			counts[r.LocationID]++
		}
	}

	costs := make(map[int64]float64, len(sums))
	for locID, sum := range sums {
		costs[locID] = sum / float64(counts[locID])
	}
	return costs
}

// BudgetLimit derives a ceiling from the user's budget tier flags,
// checked in ascending tier order. A user with no tier set is
// unconstrained.
func BudgetLimit(user models.User) float64 {
	switch {
	case user.BudgetUnder25K:
		return budgetCeilingUnder25K
	case user.Budget25KTo50K:
		return budgetCeiling25KTo50K
	case user.Budget50KTo100K:
		return budgetCeiling50KTo100K
	case user.BudgetAbove100K:
		return budgetCeilingAbove100K
	default:
		return math.Inf(1)
	}
}

// ApplyBudgetFilter drops candidates whose estimated cost exceeds the
// limit. The ceiling is inclusive. Candidates with no cost estimate fail
// closed. Surviving candidates keep their content ranking order and carry
// the estimate forward.
func ApplyBudgetFilter(candidates []Candidate, costs map[int64]float64, limit float64) []Candidate {
	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		cost, ok := costs[c.Location.ID]
		if !ok || cost > limit {
			continue
		}
		c.EstimatedCost = cost
		filtered = append(filtered, c)
	}
	return filtered
}

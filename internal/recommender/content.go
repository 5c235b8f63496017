package recommender

import (
	"sort"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// Candidate is one location in the content-ranked pool. EstimatedCost is
// populated by the budget filter; until then it is zero and meaningless.
type Candidate struct {
	Location      models.Location
	ContentScore  float64
	EstimatedCost float64
}

// RankByContent scores every catalog row by cosine similarity against the
// query vector and returns the top pool candidates, sorted descending.
// Ties keep catalog order. The pool is intentionally larger than the
// final display count so budget filtering can remove candidates without
// starving the result.
func RankByContent(query []float64, features *LocationFeatures, locations []models.Location, pool int) []Candidate {
	if features == nil || features.Matrix == nil || len(locations) == 0 {
		return nil
	}

	candidates := make([]Candidate, len(locations))
	for i, loc := range locations {
		candidates[i] = Candidate{
			Location:     loc,
			ContentScore: cosineSimilarity(query, features.Matrix.RawRowView(i)),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ContentScore > candidates[j].ContentScore
	})

	if pool > 0 && len(candidates) > pool {
		candidates = candidates[:pool]
	}
	return candidates
}

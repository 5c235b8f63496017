package recommender

import (
	"sort"

	"github.com/offbeatoasis/oasis/pkg/models"
)

const normalizeEpsilon = 1e-9

// Adaptive cold-start weights. Fixed literals, not configuration: offline
// evaluation results must be reproducible across deployments.
const (
	coldStartMaxReviews = 3
	warmUserMinReviews  = 10

	coldContentWeight = 0.8
	coldCollabWeight  = 0.2
	warmContentWeight = 0.3
	warmCollabWeight  = 0.7
)

// NormalizeScores min-max scales to [0,1] with an epsilon in the
// denominator, so a constant array maps to all zeros instead of faulting.
func NormalizeScores(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	normalized := make([]float64, len(scores))
	for i, s := range scores {
		normalized[i] = (s - min) / (max - min + normalizeEpsilon)
	}
	return normalized
}

// AdaptiveWeights overrides the caller-supplied weight pair based on how
// many reviews the target user has: sparse users lean on content because
// their collaborative signal is unreliable, heavy reviewers lean on the
// behavioral signal, and everyone in between keeps the supplied weights.
func AdaptiveWeights(reviewCount int, weightContent, weightCollab float64) (float64, float64) {
	switch {
	case reviewCount < coldStartMaxReviews:
		return coldContentWeight, coldCollabWeight
	case reviewCount > warmUserMinReviews:
		return warmContentWeight, warmCollabWeight
	default:
		return weightContent, weightCollab
	}
}

// CombineScores fuses the budget-filtered content candidates with the
// collaborative predictions. Both score arrays are normalized
// independently, the collaborative side is left-joined onto candidates by
// location id (missing entries contribute 0, they never drop a
// candidate), and the weighted sum is sorted descending with stable ties.
// Positions are 1-based.
func CombineScores(candidates []Candidate, collab []PredictedScore, weightContent, weightCollab float64) []models.Recommendation {
	if len(candidates) == 0 {
		return nil
	}

	contentScores := make([]float64, len(candidates))
	for i, c := range candidates {
		contentScores[i] = c.ContentScore
	}
	normalizedContent := NormalizeScores(contentScores)

	collabScores := make([]float64, len(collab))
	for i, p := range collab {
		collabScores[i] = p.Score
	}
	normalizedCollab := NormalizeScores(collabScores)

	type collabEntry struct{ raw, normalized float64 }
	collabByLocation := make(map[int64]collabEntry, len(collab))
	for i, p := range collab {
		collabByLocation[p.LocationID] = collabEntry{raw: p.Score, normalized: normalizedCollab[i]}
	}

	recs := make([]models.Recommendation, len(candidates))
	for i, c := range candidates {
		entry := collabByLocation[c.Location.ID]
		recs[i] = models.Recommendation{
			LocationID:        c.Location.ID,
			LocationName:      c.Location.Name,
			State:             c.Location.State,
			Category:          c.Location.Category,
			EstimatedCost:     c.EstimatedCost,
			ContentScore:      c.ContentScore,
			CollabScore:       entry.raw,
			NormalizedContent: normalizedContent[i],
			NormalizedCollab:  entry.normalized,
			HybridScore:       weightContent*normalizedContent[i] + weightCollab*entry.normalized,
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].HybridScore > recs[j].HybridScore
	})
	for i := range recs {
		recs[i].Position = i + 1
	}
	return recs
}

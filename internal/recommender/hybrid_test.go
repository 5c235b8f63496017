package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/pkg/models"
)

func TestNormalizeScores(t *testing.T) {
	t.Run("scales to the unit interval", func(t *testing.T) {
		normalized := NormalizeScores([]float64{2, 6, 4})
		require.Len(t, normalized, 3)
		assert.InDelta(t, 0.0, normalized[0], 1e-6)
		assert.InDelta(t, 1.0, normalized[1], 1e-6)
		assert.InDelta(t, 0.5, normalized[2], 1e-6)
	})

	t.Run("preserves ordering", func(t *testing.T) {
		normalized := NormalizeScores([]float64{0.1, 0.9, 0.5, 0.7})
		assert.Less(t, normalized[0], normalized[2])
		assert.Less(t, normalized[2], normalized[3])
		assert.Less(t, normalized[3], normalized[1])
	})

	t.Run("constant input maps to zeros", func(t *testing.T) {
		for _, v := range NormalizeScores([]float64{3, 3, 3}) {
			assert.Equal(t, 0.0, v)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, NormalizeScores(nil))
	})
}

func TestAdaptiveWeights(t *testing.T) {
	t.Run("sparse history leans on content", func(t *testing.T) {
		wc, wcol := AdaptiveWeights(2, 0.6, 0.4)
		assert.Equal(t, 0.8, wc)
		assert.Equal(t, 0.2, wcol)
	})

	t.Run("heavy history leans on collaboration", func(t *testing.T) {
		wc, wcol := AdaptiveWeights(11, 0.6, 0.4)
		assert.Equal(t, 0.3, wc)
		assert.Equal(t, 0.7, wcol)
	})

	t.Run("boundaries keep caller weights", func(t *testing.T) {
		for _, count := range []int{3, 5, 10} {
			wc, wcol := AdaptiveWeights(count, 0.6, 0.4)
			assert.Equal(t, 0.6, wc, "count %d", count)
			assert.Equal(t, 0.4, wcol, "count %d", count)
		}
	})
}

func TestCombineScores(t *testing.T) {
	candidates := []Candidate{
		{Location: models.Location{ID: 1, Name: "A"}, ContentScore: 0.9, EstimatedCost: 20000},
		{Location: models.Location{ID: 2, Name: "B"}, ContentScore: 0.5, EstimatedCost: 15000},
		{Location: models.Location{ID: 3, Name: "C"}, ContentScore: 0.1, EstimatedCost: 10000},
	}

	t.Run("weighted fusion with left join", func(t *testing.T) {
		collab := []PredictedScore{
			{LocationID: 3, Score: 5},
			{LocationID: 2, Score: 1},
		}
		recs := CombineScores(candidates, collab, 0.5, 0.5)
		require.Len(t, recs, 3)

		byID := make(map[int64]models.Recommendation)
		for _, r := range recs {
			byID[r.LocationID] = r
		}

		// Location 1 has no collaborative entry; it keeps its content
		// signal and contributes zero on the other side.
		assert.Equal(t, 0.0, byID[1].CollabScore)
		assert.Equal(t, 0.0, byID[1].NormalizedCollab)
		assert.InDelta(t, 0.5, byID[1].HybridScore, 1e-6)

		// Location 3 is the collaborative favorite.
		assert.InDelta(t, 1.0, byID[3].NormalizedCollab, 1e-6)
		assert.InDelta(t, 0.5, byID[3].HybridScore, 1e-6)

		assert.InDelta(t, 0.0, byID[2].NormalizedCollab, 1e-6)
	})

	t.Run("content only when no collaborative signal", func(t *testing.T) {
		recs := CombineScores(candidates, nil, 0.8, 0.2)
		require.Len(t, recs, 3)

		assert.Equal(t, int64(1), recs[0].LocationID)
		assert.InDelta(t, 0.8, recs[0].HybridScore, 1e-6)
		assert.Equal(t, 0.0, recs[0].NormalizedCollab)
	})

	t.Run("positions are one-based and follow the sort", func(t *testing.T) {
		recs := CombineScores(candidates, nil, 1, 0)
		for i, r := range recs {
			assert.Equal(t, i+1, r.Position)
			if i > 0 {
				assert.GreaterOrEqual(t, recs[i-1].HybridScore, r.HybridScore)
			}
		}
	})

	t.Run("empty candidate pool", func(t *testing.T) {
		assert.Nil(t, CombineScores(nil, []PredictedScore{{LocationID: 1, Score: 5}}, 0.5, 0.5))
	})
}

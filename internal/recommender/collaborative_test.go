package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/pkg/models"
)

func testReviews() []models.Review {
	return []models.Review{
		{UserID: 1, LocationID: 10, Rating: 5},
		{UserID: 1, LocationID: 11, Rating: 4},
		{UserID: 2, LocationID: 10, Rating: 5},
		{UserID: 2, LocationID: 11, Rating: 4},
		{UserID: 2, LocationID: 12, Rating: 3},
		{UserID: 3, LocationID: 12, Rating: 5},
	}
}

func TestBuildInteractionMatrix(t *testing.T) {
	t.Run("rows and columns are sorted", func(t *testing.T) {
		m := BuildInteractionMatrix([]models.Review{
			{UserID: 9, LocationID: 30, Rating: 1},
			{UserID: 2, LocationID: 10, Rating: 2},
			{UserID: 5, LocationID: 20, Rating: 3},
		})
		assert.Equal(t, []int64{2, 5, 9}, m.Users())
		assert.Equal(t, []int64{10, 20, 30}, m.Locations())
	})

	t.Run("duplicate pairs are averaged", func(t *testing.T) {
		m := BuildInteractionMatrix([]models.Review{
			{UserID: 1, LocationID: 10, Rating: 2},
			{UserID: 1, LocationID: 10, Rating: 4},
		})
		assert.Equal(t, 3.0, m.Rating(1, 10))
	})

	t.Run("missing cells read zero", func(t *testing.T) {
		m := BuildInteractionMatrix(testReviews())
		assert.Equal(t, 0.0, m.Rating(1, 12))
		assert.Equal(t, 0.0, m.Rating(99, 10))
		assert.Equal(t, 0.0, m.Rating(1, 99))
	})

	t.Run("empty snapshot", func(t *testing.T) {
		m := BuildInteractionMatrix(nil)
		assert.Empty(t, m.Users())
		assert.Empty(t, m.Locations())
	})
}

func TestTopKSimilarUsers(t *testing.T) {
	m := BuildInteractionMatrix(testReviews())

	t.Run("nearest neighbor first, target excluded", func(t *testing.T) {
		neighbors, ok := m.TopKSimilarUsers(1, 5)
		require.True(t, ok)
		require.Len(t, neighbors, 2)

		// User 2 shares user 1's ratings exactly; user 3 shares nothing.
		assert.Equal(t, int64(2), neighbors[0].UserID)
		assert.Greater(t, neighbors[0].Weight, neighbors[1].Weight)
		for _, n := range neighbors {
			assert.NotEqual(t, int64(1), n.UserID)
		}
	})

	t.Run("k truncates the neighborhood", func(t *testing.T) {
		neighbors, ok := m.TopKSimilarUsers(1, 1)
		require.True(t, ok)
		require.Len(t, neighbors, 1)
		assert.Equal(t, int64(2), neighbors[0].UserID)
	})

	t.Run("unknown user signals no neighbors", func(t *testing.T) {
		neighbors, ok := m.TopKSimilarUsers(99, 5)
		assert.False(t, ok)
		assert.Nil(t, neighbors)
	})
}

func TestPredictRatings(t *testing.T) {
	m := BuildInteractionMatrix(testReviews())

	t.Run("scores cover only unrated locations", func(t *testing.T) {
		neighbors, ok := m.TopKSimilarUsers(1, 5)
		require.True(t, ok)

		scores := m.PredictRatings(1, neighbors)
		require.Len(t, scores, 1)
		assert.Equal(t, int64(12), scores[0].LocationID)
		assert.Greater(t, scores[0].Score, 0.0)
	})

	t.Run("nil neighborhood yields nothing", func(t *testing.T) {
		assert.Nil(t, m.PredictRatings(1, nil))
	})

	t.Run("zero weight sum drops the location", func(t *testing.T) {
		// Users 1 and 3 have disjoint histories, so the orthogonal
		// neighborhood carries zero total weight everywhere.
		scores := m.PredictRatings(3, []Neighbor{{UserID: 1, Weight: 0}})
		assert.Empty(t, scores)
	})

	t.Run("weighted average of neighbor ratings", func(t *testing.T) {
		reviews := []models.Review{
			{UserID: 1, LocationID: 10, Rating: 5},
			{UserID: 2, LocationID: 10, Rating: 5},
			{UserID: 2, LocationID: 11, Rating: 4},
			{UserID: 3, LocationID: 10, Rating: 5},
			{UserID: 3, LocationID: 11, Rating: 2},
		}
		mx := BuildInteractionMatrix(reviews)
		scores := mx.PredictRatings(1, []Neighbor{
			{UserID: 2, Weight: 1},
			{UserID: 3, Weight: 3},
		})
		require.Len(t, scores, 1)
		assert.Equal(t, int64(11), scores[0].LocationID)
		// (1*4 + 3*2) / (1+3)
		assert.InDelta(t, 2.5, scores[0].Score, 1e-9)
	})
}

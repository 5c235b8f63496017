package recommender

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/pkg/models"
)

func testEngine() *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(&config.RecommendationConfig{
		WeightContent:   0.6,
		WeightCollab:    0.4,
		ContentPoolSize: 50,
		NeighborCount:   5,
		TopK:            10,
		NumericFeatures: true,
	}, logger)
}

func testDataset() *store.Dataset {
	return &store.Dataset{
		Locations: []models.Location{
			{ID: 1, Name: "Calangute", State: "Goa", Category: "beach", Activities: "swimming sunbathing", Places: "shacks", ActivityCount: 2, PlaceCount: 1},
			{ID: 2, Name: "Ooty", State: "Tamil Nadu", Category: "hill", Activities: "boating gardens", Places: "lake", ActivityCount: 2, PlaceCount: 1},
			{ID: 3, Name: "Bir Billing", State: "Himachal", Category: "adventure", Activities: "paragliding trekking", Places: "landing site", ActivityCount: 2, PlaceCount: 2},
		},
		Users: []models.User{
			{ID: 100, Occupation: "engineer", LocationType: "adventure"},
			{ID: 101},
			{ID: 102},
		},
		Reviews: []models.Review{
			{UserID: 101, LocationID: 1, Rating: 4},
			{UserID: 101, LocationID: 3, Rating: 5},
			{UserID: 102, LocationID: 1, Rating: 3},
			{UserID: 102, LocationID: 2, Rating: 4},
			{UserID: 102, LocationID: 3, Rating: 5},
		},
		Trips: []models.Trip{
			{UserID: 101, Cost: 20000},
			{UserID: 102, Cost: 30000},
		},
	}
}

func TestEngineRecommend(t *testing.T) {
	engine := testEngine()

	t.Run("cold user is ranked by content alone", func(t *testing.T) {
		// User 100 has no reviews: the collaborative side contributes
		// nothing and the cold-start weights apply.
		result, err := engine.Recommend(context.Background(), testDataset(), Request{
			UserID:   100,
			Category: "adventure",
			State:    "Himachal",
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Recommendations)

		assert.Equal(t, 0.8, result.WeightContent)
		assert.Equal(t, 0.2, result.WeightCollab)

		top := result.Recommendations[0]
		assert.Equal(t, int64(3), top.LocationID)
		assert.Equal(t, 0.0, top.CollabScore)
		for _, rec := range result.Recommendations {
			assert.InDelta(t, 0.8*rec.NormalizedContent, rec.HybridScore, 1e-9)
		}
	})

	t.Run("identical inputs produce identical rankings", func(t *testing.T) {
		req := Request{UserID: 100, Category: "adventure", State: "Himachal"}

		first, err := engine.Recommend(context.Background(), testDataset(), req)
		require.NoError(t, err)
		second, err := engine.Recommend(context.Background(), testDataset(), req)
		require.NoError(t, err)

		require.Equal(t, len(first.Recommendations), len(second.Recommendations))
		for i := range first.Recommendations {
			assert.Equal(t, first.Recommendations[i].LocationID, second.Recommendations[i].LocationID)
			assert.Equal(t, first.Recommendations[i].HybridScore, second.Recommendations[i].HybridScore)
		}
	})

	t.Run("explicit budget filters candidates", func(t *testing.T) {
		budget := 1000.0
		result, err := engine.Recommend(context.Background(), testDataset(), Request{
			UserID:   100,
			Category: "adventure",
			State:    "Himachal",
			Budget:   &budget,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Recommendations)
		assert.Equal(t, 1000.0, result.BudgetLimit)
	})

	t.Run("tier flags derive the budget ceiling", func(t *testing.T) {
		data := testDataset()
		data.Users[0].BudgetUnder25K = true

		result, err := engine.Recommend(context.Background(), data, Request{
			UserID:   100,
			Category: "beach",
			State:    "Goa",
		})
		require.NoError(t, err)
		assert.Equal(t, 25000.0, result.BudgetLimit)
		for _, rec := range result.Recommendations {
			assert.LessOrEqual(t, rec.EstimatedCost, 25000.0)
		}
	})

	t.Run("reviewing user gets a collaborative contribution", func(t *testing.T) {
		data := testDataset()
		data.Reviews = append(data.Reviews, models.Review{UserID: 100, LocationID: 1, Rating: 4})

		result, err := engine.Recommend(context.Background(), data, Request{
			UserID:   100,
			Category: "adventure",
			State:    "Himachal",
		})
		require.NoError(t, err)

		var sawCollab bool
		for _, rec := range result.Recommendations {
			if rec.CollabScore > 0 {
				sawCollab = true
			}
		}
		assert.True(t, sawCollab)
	})

	t.Run("count truncates the result", func(t *testing.T) {
		result, err := engine.Recommend(context.Background(), testDataset(), Request{
			UserID:   100,
			Category: "adventure",
			State:    "Himachal",
			Count:    1,
		})
		require.NoError(t, err)
		assert.Len(t, result.Recommendations, 1)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.Recommend(ctx, testDataset(), Request{UserID: 100})
		assert.Error(t, err)
	})
}

func TestRecommendForEvaluation(t *testing.T) {
	engine := testEngine()
	data := testDataset()

	recs, err := engine.RecommendForEvaluation(101, data.Reviews, data.Users, data.Locations, data.Trips, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recs), 2)
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.Position)
	}
}

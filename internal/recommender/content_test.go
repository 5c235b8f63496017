package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/pkg/models"
)

func TestRankByContent(t *testing.T) {
	locations := testLocations()
	features := FitLocationFeatures(locations, true)

	t.Run("best match ranks first", func(t *testing.T) {
		textOnly := FitLocationFeatures(locations, false)
		query := textOnly.Space.EncodePreferences("Adventure", "Uttarakhand", nil)
		ranked := RankByContent(query, textOnly, locations, 0)

		require.Len(t, ranked, 3)
		assert.Equal(t, int64(2), ranked[0].Location.ID)
		assert.GreaterOrEqual(t, ranked[0].ContentScore, ranked[1].ContentScore)
		assert.GreaterOrEqual(t, ranked[1].ContentScore, ranked[2].ContentScore)
	})

	t.Run("pool truncates the ranking", func(t *testing.T) {
		query := features.Space.EncodePreferences("Beach", "Goa", nil)
		ranked := RankByContent(query, features, locations, 2)
		assert.Len(t, ranked, 2)
	})

	t.Run("pool larger than catalog keeps everything", func(t *testing.T) {
		query := features.Space.EncodePreferences("Beach", "Goa", nil)
		ranked := RankByContent(query, features, locations, 50)
		assert.Len(t, ranked, 3)
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		same := []models.Location{
			{ID: 10, Category: "Beach", State: "Goa"},
			{ID: 11, Category: "Beach", State: "Goa"},
			{ID: 12, Category: "Beach", State: "Goa"},
		}
		f := FitLocationFeatures(same, false)
		query := f.Space.EncodePreferences("Beach", "Goa", nil)
		ranked := RankByContent(query, f, same, 0)

		require.Len(t, ranked, 3)
		assert.Equal(t, int64(10), ranked[0].Location.ID)
		assert.Equal(t, int64(11), ranked[1].Location.ID)
		assert.Equal(t, int64(12), ranked[2].Location.ID)
	})

	t.Run("zero query scores everything zero", func(t *testing.T) {
		query := make([]float64, features.Space.Dims())
		ranked := RankByContent(query, features, locations, 0)

		require.Len(t, ranked, 3)
		for _, c := range ranked {
			assert.Equal(t, 0.0, c.ContentScore)
		}
	})

	t.Run("nil features yield nothing", func(t *testing.T) {
		assert.Nil(t, RankByContent(nil, nil, locations, 0))
	})
}

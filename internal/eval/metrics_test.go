package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func relevantSet(ids ...int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestPrecisionAtK(t *testing.T) {
	recommended := []int64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, PrecisionAtK(recommended, relevantSet(1, 2, 3, 4, 5), 5))
	assert.Equal(t, 0.4, PrecisionAtK(recommended, relevantSet(1, 3), 5))
	assert.Equal(t, 0.0, PrecisionAtK(recommended, relevantSet(9), 5))
	assert.Equal(t, 0.5, PrecisionAtK(recommended, relevantSet(1), 2))
	assert.Equal(t, 0.0, PrecisionAtK(nil, relevantSet(1), 5))

	// Fewer recommendations than k still divide by k: a budget filter
	// that leaves one relevant location out of five slots scores 0.2.
	assert.Equal(t, 0.2, PrecisionAtK([]int64{1}, relevantSet(1, 2, 3), 5))
}

func TestRecallAtK(t *testing.T) {
	recommended := []int64{1, 2, 3}

	assert.Equal(t, 1.0, RecallAtK(recommended, relevantSet(1, 2), 3))
	assert.Equal(t, 0.5, RecallAtK(recommended, relevantSet(1, 9), 3))
	assert.Equal(t, 0.0, RecallAtK(recommended, relevantSet(), 3))
	// Relevant item outside the cutoff does not count.
	assert.Equal(t, 0.0, RecallAtK(recommended, relevantSet(3), 2))
}

func TestNDCGAtK(t *testing.T) {
	t.Run("perfect ranking scores one", func(t *testing.T) {
		assert.InDelta(t, 1.0, NDCGAtK([]int64{1, 2}, relevantSet(1, 2), 2), 1e-9)
	})

	t.Run("late hit is discounted", func(t *testing.T) {
		// Single relevant item at rank 2 (0-based): DCG = 1/log2(4),
		// IDCG = 1/log2(2).
		got := NDCGAtK([]int64{5, 6, 1}, relevantSet(1), 3)
		assert.InDelta(t, 1/math.Log2(4), got, 1e-9)
	})

	t.Run("short list is normalized against k slots", func(t *testing.T) {
		// One recommendation, three relevant, k=5: DCG = 1/log2(2),
		// IDCG fills min(3, 5) ideal ranks.
		idcg := 1/math.Log2(2) + 1/math.Log2(3) + 1/math.Log2(4)
		got := NDCGAtK([]int64{1}, relevantSet(1, 2, 3), 5)
		assert.InDelta(t, 1/idcg, got, 1e-9)
	})

	t.Run("no hits scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NDCGAtK([]int64{5, 6}, relevantSet(1), 2))
	})

	t.Run("empty inputs score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NDCGAtK(nil, relevantSet(1), 2))
		assert.Equal(t, 0.0, NDCGAtK([]int64{1}, relevantSet(), 2))
	})
}

func TestHitRateAtK(t *testing.T) {
	assert.Equal(t, 1.0, HitRateAtK([]int64{1, 2, 3}, relevantSet(3), 3))
	assert.Equal(t, 0.0, HitRateAtK([]int64{1, 2, 3}, relevantSet(3), 2))
	assert.Equal(t, 0.0, HitRateAtK(nil, relevantSet(3), 3))
}

package recommender

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// InteractionMatrix is a dense user×location rating matrix built from one
// review snapshot. A cell of 0 means "no rating or rated zero"; the two
// are deliberately indistinguishable. It must be rebuilt whenever the
// review set changes.
type InteractionMatrix struct {
	userIDs     []int64
	locationIDs []int64
	userIndex   map[int64]int
	locIndex    map[int64]int
	ratings     *mat.Dense
}

// BuildInteractionMatrix pivots review records into a user×location
// matrix. Rows and columns are sorted by identifier so repeated builds
// over the same snapshot are identical; duplicate (user, location) pairs
// are averaged.
func BuildInteractionMatrix(reviews []models.Review) *InteractionMatrix {
	m := &InteractionMatrix{
		userIndex: make(map[int64]int),
		locIndex:  make(map[int64]int),
	}

	for _, r := range reviews {
		if _, ok := m.userIndex[r.UserID]; !ok {
			m.userIndex[r.UserID] = 0
			m.userIDs = append(m.userIDs, r.UserID)
		}
		if _, ok := m.locIndex[r.LocationID]; !ok {
			m.locIndex[r.LocationID] = 0
			m.locationIDs = append(m.locationIDs, r.LocationID)
		}
	}
	if len(m.userIDs) == 0 || len(m.locationIDs) == 0 {
		return m
	}

	sort.Slice(m.userIDs, func(i, j int) bool { return m.userIDs[i] < m.userIDs[j] })
	sort.Slice(m.locationIDs, func(i, j int) bool { return m.locationIDs[i] < m.locationIDs[j] })
	for i, id := range m.userIDs {
		m.userIndex[id] = i
	}
	for j, id := range m.locationIDs {
		m.locIndex[id] = j
	}

	sums := mat.NewDense(len(m.userIDs), len(m.locationIDs), nil)
	counts := mat.NewDense(len(m.userIDs), len(m.locationIDs), nil)
	for _, r := range reviews {
		i, j := m.userIndex[r.UserID], m.locIndex[r.LocationID]
		sums.Set(i, j, sums.At(i, j)+r.Rating)
		counts.Set(i, j, counts.At(i, j)+1)
	}

	m.ratings = mat.NewDense(len(m.userIDs), len(m.locationIDs), nil)
	for i := range m.userIDs {
		for j := range m.locationIDs {
			if c := counts.At(i, j); c > 0 {
				m.ratings.Set(i, j, sums.At(i, j)/c)
			}
		}
	}
	return m
}

// Users returns the row identifiers in matrix order.
func (m *InteractionMatrix) Users() []int64 { return m.userIDs }

// Locations returns the column identifiers in matrix order.
func (m *InteractionMatrix) Locations() []int64 { return m.locationIDs }

// Rating returns the cell for a (user, location) pair, 0 when either is
// absent from the matrix.
func (m *InteractionMatrix) Rating(userID, locationID int64) float64 {
	i, ok := m.userIndex[userID]
	if !ok {
		return 0
	}
	j, ok := m.locIndex[locationID]
	if !ok {
		return 0
	}
	return m.ratings.At(i, j)
}

// Neighbor is one similar user together with its similarity weight.
type Neighbor struct {
	UserID int64
	Weight float64
}

// PredictedScore is one collaborative rating prediction.
type PredictedScore struct {
	LocationID int64
	Score      float64
}

// TopKSimilarUsers ranks every other user by cosine similarity of rating
// rows and returns the k nearest with their weights. The second return is
// false when the target user has no row at all; callers must branch on it
// rather than treat the result as an empty-but-valid neighborhood.
func (m *InteractionMatrix) TopKSimilarUsers(userID int64, k int) ([]Neighbor, bool) {
	target, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}

	row := m.ratings.RawRowView(target)
	neighbors := make([]Neighbor, 0, len(m.userIDs)-1)
	for i, id := range m.userIDs {
		if i == target {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			UserID: id,
			Weight: cosineSimilarity(row, m.ratings.RawRowView(i)),
		})
	}

	// Descending by similarity; equal-weight neighbors stay in id order
	// so the neighborhood is deterministic.
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Weight > neighbors[j].Weight
	})
	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, true
}

// PredictRatings computes, for every location the target user has not
// rated, the similarity-weighted average of the neighbors' ratings,
// sorted descending. A nil neighborhood (the no-neighbors signal) yields
// an empty score set, and a zero weight sum is treated as no signal for
// that location rather than letting a NaN escape.
func (m *InteractionMatrix) PredictRatings(userID int64, neighbors []Neighbor) []PredictedScore {
	if len(neighbors) == 0 {
		return nil
	}
	target, ok := m.userIndex[userID]
	if !ok {
		return nil
	}

	scores := make([]PredictedScore, 0, len(m.locationIDs))
	for j, locID := range m.locationIDs {
		if m.ratings.At(target, j) != 0 {
			continue
		}

		var weightedSum, weightSum float64
		for _, n := range neighbors {
			weightedSum += n.Weight * m.ratings.At(m.userIndex[n.UserID], j)
			weightSum += n.Weight
		}
		if weightSum == 0 {
			continue
		}
		scores = append(scores, PredictedScore{LocationID: locID, Score: weightedSum / weightSum})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

package recommender

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/pkg/models"
)

// Fixed probe preferences for offline evaluation runs, so every user is
// scored against the same query and folds stay comparable.
const (
	evaluationCategory = "Adventure"
	evaluationState    = "Goa"
)

// Engine runs the hybrid pipeline. It holds configuration and an
// injected logger only; every computation is request-scoped, so one
// Engine is safe to share across concurrent requests.
type Engine struct {
	cfg    *config.RecommendationConfig
	logger *logrus.Logger
}

func New(cfg *config.RecommendationConfig, logger *logrus.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Request describes one recommendation computation. Zero-valued tunables
// fall back to configured defaults.
type Request struct {
	UserID   int64
	Category string
	State    string

	// Budget overrides the ceiling derived from the user's tier flags
	// when non-nil.
	Budget *float64

	Count         int
	PoolSize      int
	NeighborCount int
	WeightContent float64
	WeightCollab  float64
}

// Result is the final ranked output. An empty Recommendations slice is a
// valid outcome, not an error; it means nothing survived budget
// filtering.
type Result struct {
	UserID          int64
	Recommendations []models.Recommendation
	BudgetLimit     float64
	WeightContent   float64
	WeightCollab    float64
	GeneratedAt     time.Time
}

func (e *Engine) applyDefaults(req *Request) {
	if req.Count <= 0 {
		req.Count = e.cfg.TopK
	}
	if req.PoolSize <= 0 {
		req.PoolSize = e.cfg.ContentPoolSize
	}
	if req.NeighborCount <= 0 {
		req.NeighborCount = e.cfg.NeighborCount
	}
	if req.WeightContent == 0 && req.WeightCollab == 0 {
		req.WeightContent = e.cfg.WeightContent
		req.WeightCollab = e.cfg.WeightCollab
	}
}

// Recommend executes the full pipeline against one dataset snapshot:
// vectorize the catalog, encode the query, rank by content into the
// candidate pool, predict collaborative scores from nearest neighbors,
// filter the pool by budget and fuse the two signals with adaptive
// weights. Nothing is cached; the vectorizer is refitted and the
// interaction matrix rebuilt on every call.
func (e *Engine) Recommend(ctx context.Context, data *store.Dataset, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.applyDefaults(&req)

	features := FitLocationFeatures(data.Locations, e.cfg.NumericFeatures)
	e.logger.WithFields(logrus.Fields{
		"locations":  len(data.Locations),
		"vocabulary": features.Space.VocabularySize(),
		"dims":       features.Space.Dims(),
	}).Debug("Location features fitted")

	var user *models.User
	if u, ok := data.User(req.UserID); ok {
		user = &u
	}

	query := features.Space.EncodePreferences(req.Category, req.State, user)
	candidates := RankByContent(query, features, data.Locations, req.PoolSize)

	matrix := BuildInteractionMatrix(data.Reviews)
	var collab []PredictedScore
	if neighbors, ok := matrix.TopKSimilarUsers(req.UserID, req.NeighborCount); ok {
		collab = matrix.PredictRatings(req.UserID, neighbors)
	} else {
		e.logger.WithField("user_id", req.UserID).Debug("No rating history, collaborative signal unavailable")
	}

	limit := e.budgetLimit(req, user)
	costs := EstimateLocationCosts(data.Reviews, data.Trips)
	filtered := ApplyBudgetFilter(candidates, costs, limit)

	reviewCount := data.ReviewCount(req.UserID)
	weightContent, weightCollab := AdaptiveWeights(reviewCount, req.WeightContent, req.WeightCollab)

	recs := CombineScores(filtered, collab, weightContent, weightCollab)
	if len(recs) > req.Count {
		recs = recs[:req.Count]
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":        req.UserID,
		"review_count":   reviewCount,
		"pool":           len(candidates),
		"after_budget":   len(filtered),
		"returned":       len(recs),
		"budget_limit":   limit,
		"weight_content": weightContent,
		"weight_collab":  weightCollab,
	}).Info("Recommendations generated")

	return &Result{
		UserID:          req.UserID,
		Recommendations: recs,
		BudgetLimit:     limit,
		WeightContent:   weightContent,
		WeightCollab:    weightCollab,
		GeneratedAt:     time.Now(),
	}, nil
}

func (e *Engine) budgetLimit(req Request, user *models.User) float64 {
	if req.Budget != nil {
		return *req.Budget
	}
	if user != nil {
		return BudgetLimit(*user)
	}
	return BudgetLimit(models.User{})
}

// RecommendForEvaluation runs the pipeline for an offline evaluation
// harness: the review slice is a training-only subset, the probe query is
// fixed, and the budget comes from the user's tier flags. The returned
// shape matches Recommend so held-out reviews can be scored with ranking
// metrics.
func (e *Engine) RecommendForEvaluation(
	userID int64,
	trainReviews []models.Review,
	users []models.User,
	locations []models.Location,
	trips []models.Trip,
	topN int,
) ([]models.Recommendation, error) {
	data := &store.Dataset{
		Locations: locations,
		Users:     users,
		Reviews:   trainReviews,
		Trips:     trips,
	}

	result, err := e.Recommend(context.Background(), data, Request{
		UserID:   userID,
		Category: evaluationCategory,
		State:    evaluationState,
		Count:    topN,
	})
	if err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}

package eval

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/recommender"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/pkg/models"
)

// Evaluator runs seeded k-fold cross validation of the recommendation
// pipeline over a dataset snapshot and averages ranking metrics across
// every (user, fold) evaluation.
type Evaluator struct {
	engine *recommender.Engine
	cfg    *config.EvaluationConfig
	logger *logrus.Logger
}

func New(engine *recommender.Engine, cfg *config.EvaluationConfig, logger *logrus.Logger) *Evaluator {
	return &Evaluator{engine: engine, cfg: cfg, logger: logger}
}

// Evaluate splits each user's reviews into cfg.Folds folds with a seeded
// shuffle, retrains on the remainder and scores the held-out fold with
// precision, recall, NDCG and hit rate at cfg.TopK. Users with fewer
// reviews than folds are skipped: they cannot populate every fold.
func (e *Evaluator) Evaluate(ctx context.Context, data *store.Dataset) (*models.EvaluationResult, error) {
	folds := e.cfg.Folds
	if folds < 2 {
		folds = 2
	}
	topK := e.cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	byUser := make(map[int64][]models.Review)
	for _, r := range data.Reviews {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	userIDs := make([]int64, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	// Deterministic iteration order; the rng below then owns all
	// randomness in the run.
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	result := &models.EvaluationResult{Folds: folds, TopK: topK}
	start := time.Now()
	var runs int

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reviews := byUser[userID]
		if len(reviews) < folds {
			continue
		}
		shuffled := make([]models.Review, len(reviews))
		copy(shuffled, reviews)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		result.UsersEvaluated++
		for fold := 0; fold < folds; fold++ {
			train, test := splitFold(shuffled, folds, fold)

			// Every held-out review marks its location relevant; the
			// rating influences training, not the relevance judgment.
			relevant := make(map[int64]struct{}, len(test))
			for _, r := range test {
				relevant[r.LocationID] = struct{}{}
			}

			trainSet := append(othersReviews(byUser, userID), train...)
			recs, err := e.engine.RecommendForEvaluation(userID, trainSet, data.Users, data.Locations, data.Trips, topK)
			if err != nil {
				return nil, err
			}

			recommended := make([]int64, len(recs))
			for i, rec := range recs {
				recommended[i] = rec.LocationID
			}

			result.Precision += PrecisionAtK(recommended, relevant, topK)
			result.Recall += RecallAtK(recommended, relevant, topK)
			result.NDCG += NDCGAtK(recommended, relevant, topK)
			result.HitRate += HitRateAtK(recommended, relevant, topK)
			runs++
		}
	}

	if runs > 0 {
		result.Precision /= float64(runs)
		result.Recall /= float64(runs)
		result.NDCG /= float64(runs)
		result.HitRate /= float64(runs)
	}

	e.logger.WithFields(logrus.Fields{
		"users_evaluated": result.UsersEvaluated,
		"folds":           folds,
		"top_k":           topK,
		"precision":       result.Precision,
		"recall":          result.Recall,
		"ndcg":            result.NDCG,
		"hit_rate":        result.HitRate,
		"duration":        time.Since(start),
	}).Info("Evaluation completed")

	return result, nil
}

// splitFold partitions reviews round-robin into folds and returns the
// training remainder and the held-out fold.
func splitFold(reviews []models.Review, folds, fold int) (train, test []models.Review) {
	for i, r := range reviews {
		if i%folds == fold {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return train, test
}

func othersReviews(byUser map[int64][]models.Review, exclude int64) []models.Review {
	ids := make([]int64, 0, len(byUser))
	for id := range byUser {
		if id != exclude {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Review
	for _, id := range ids {
		out = append(out, byUser[id]...)
	}
	return out
}

package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/eval"
	"github.com/offbeatoasis/oasis/internal/messaging"
	"github.com/offbeatoasis/oasis/internal/recommender"
	"github.com/offbeatoasis/oasis/internal/services"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Recommendation *RecommendationHandler
	Review         *ReviewHandler
	Evaluation     *EvaluationHandler
}

func New(
	cfg *config.Config,
	logger *logrus.Logger,
	snapshot *store.Snapshot,
	engine *recommender.Engine,
	evaluator *eval.Evaluator,
	bus *messaging.MessageBus,
	authService *services.AuthService,
	healthService *services.HealthService,
	validator *validation.SchemaValidator,
) (*Handlers, error) {
	review, err := NewReviewHandler(logger, bus, validator)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:         NewHealthHandler(logger, healthService),
		Auth:           NewAuthHandler(logger, authService, cfg.Auth.TokenTTL),
		Recommendation: NewRecommendationHandler(cfg, logger, snapshot, engine),
		Review:         review,
		Evaluation:     NewEvaluationHandler(logger, snapshot, evaluator),
	}, nil
}

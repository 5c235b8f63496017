package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/config"
	"github.com/offbeatoasis/oasis/internal/recommender"
	"github.com/offbeatoasis/oasis/internal/store"
	"github.com/offbeatoasis/oasis/pkg/models"
)

type RecommendationHandler struct {
	cfg      *config.Config
	logger   *logrus.Logger
	snapshot *store.Snapshot
	engine   *recommender.Engine
}

func NewRecommendationHandler(cfg *config.Config, logger *logrus.Logger, snapshot *store.Snapshot, engine *recommender.Engine) *RecommendationHandler {
	return &RecommendationHandler{
		cfg:      cfg,
		logger:   logger,
		snapshot: snapshot,
		engine:   engine,
	}
}

// Get serves GET /api/v1/recommendations/:userId. Query parameters:
// category and state shape the content query, budget overrides the
// tier-derived ceiling, count caps the result size. An empty list is a
// normal 200, not an error.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		recommendationRequests.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "User ID must be an integer",
			},
		})
		return
	}

	req := recommender.Request{
		UserID:   userID,
		Category: c.Query("category"),
		State:    c.Query("state"),
	}

	if raw := c.Query("budget"); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil || budget < 0 {
			recommendationRequests.WithLabelValues("bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_BUDGET",
					"message": "Budget must be a non-negative number",
				},
			})
			return
		}
		req.Budget = &budget
	}

	if raw := c.Query("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 1 {
			recommendationRequests.WithLabelValues("bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_COUNT",
					"message": "Count must be a positive integer",
				},
			})
			return
		}
		req.Count = count
	}

	start := time.Now()
	result, err := h.engine.Recommend(c.Request.Context(), h.snapshot.Dataset(), req)
	recommendationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		recommendationRequests.WithLabelValues("error").Inc()
		h.logger.WithError(err).WithField("user_id", userID).Error("Recommendation pipeline failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	var budgetLimit *float64
	if !math.IsInf(result.BudgetLimit, 1) {
		budgetLimit = &result.BudgetLimit
	}

	recommendationRequests.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, models.RecommendationResponse{
		UserID:          result.UserID,
		Recommendations: result.Recommendations,
		BudgetLimit:     budgetLimit,
		WeightContent:   result.WeightContent,
		WeightCollab:    result.WeightCollab,
		GeneratedAt:     result.GeneratedAt,
	})
}

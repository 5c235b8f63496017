package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/eval"
	"github.com/offbeatoasis/oasis/internal/store"
)

type EvaluationHandler struct {
	logger    *logrus.Logger
	snapshot  *store.Snapshot
	evaluator *eval.Evaluator
}

func NewEvaluationHandler(logger *logrus.Logger, snapshot *store.Snapshot, evaluator *eval.Evaluator) *EvaluationHandler {
	return &EvaluationHandler{
		logger:    logger,
		snapshot:  snapshot,
		evaluator: evaluator,
	}
}

// Run serves POST /api/v1/admin/evaluation: a synchronous k-fold
// evaluation over the current dataset. The run refits the pipeline once
// per (user, fold) pair, so this is an admin tool, not a request-path
// endpoint.
func (h *EvaluationHandler) Run(c *gin.Context) {
	result, err := h.evaluator.Evaluate(c.Request.Context(), h.snapshot.Dataset())
	if err != nil {
		h.logger.WithError(err).Error("Evaluation run failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "EVALUATION_FAILED",
				"message": "Evaluation run failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

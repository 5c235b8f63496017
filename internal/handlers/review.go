package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/messaging"
	"github.com/offbeatoasis/oasis/internal/validation"
	"github.com/offbeatoasis/oasis/pkg/models"
)

type ReviewHandler struct {
	logger    *logrus.Logger
	bus       *messaging.MessageBus
	validator *validation.SchemaValidator
	validate  *validator.Validate
}

func NewReviewHandler(logger *logrus.Logger, bus *messaging.MessageBus, schemaValidator *validation.SchemaValidator) (*ReviewHandler, error) {
	validate := validator.New()
	// Ratings follow the review scale of the source data, 0 to 5 in
	// half-point steps.
	err := validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Float()
		return rating >= 0 && rating <= 5 && rating*2 == float64(int64(rating*2))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register rating validation: %w", err)
	}

	return &ReviewHandler{
		logger:    logger,
		bus:       bus,
		validator: schemaValidator,
		validate:  validate,
	}, nil
}

// Submit serves POST /api/v1/reviews: schema-check the raw body, bind,
// run struct validation and enqueue for asynchronous ingestion. The
// response is 202 with a job id; the review becomes visible to the
// scoring pipeline once the consumer applies it.
func (h *ReviewHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		reviewSubmissions.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": "Failed to read request body",
			},
		})
		return
	}

	if result := h.validator.ValidateReviewSubmission(body); !result.Valid {
		reviewSubmissions.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	var submission models.ReviewSubmission
	if err := json.Unmarshal(body, &submission); err != nil {
		reviewSubmissions.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": "Failed to parse review submission",
			},
		})
		return
	}

	if err := h.validate.Struct(&submission); err != nil {
		reviewSubmissions.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_RATING",
				"message": "Rating must be between 0 and 5 in half-point steps",
			},
		})
		return
	}

	if h.bus == nil {
		reviewSubmissions.WithLabelValues("error").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "INGESTION_UNAVAILABLE",
				"message": "Review ingestion is not configured",
			},
		})
		return
	}

	jobID := uuid.New()
	if err := h.bus.PublishReview(jobID, submission); err != nil {
		reviewSubmissions.WithLabelValues("error").Inc()
		h.logger.WithError(err).Error("Failed to enqueue review")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "INGESTION_UNAVAILABLE",
				"message": "Review ingestion is temporarily unavailable",
			},
		})
		return
	}

	reviewSubmissions.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "accepted",
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/services"
	"github.com/offbeatoasis/oasis/pkg/models"
)

type AuthHandler struct {
	logger      *logrus.Logger
	authService *services.AuthService
	tokenTTL    time.Duration
}

func NewAuthHandler(logger *logrus.Logger, authService *services.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		authService: authService,
		tokenTTL:    tokenTTL,
	}
}

// Token serves POST /api/v1/auth/token: exchanges a valid API key for a
// session-backed JWT.
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "api_key is required",
			},
		})
		return
	}

	tier, err := h.authService.ValidateAPIKey(req.APIKey)
	if err != nil {
		h.logger.WithError(err).Warn("Token request with invalid API key")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "INVALID_API_KEY",
				"message": "Invalid API key",
			},
		})
		return
	}

	token, err := h.authService.GenerateToken(uuid.New(), req.APIKey, tier)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_GENERATION_FAILED",
				"message": "Failed to generate token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokenTTL.Seconds()),
	})
}

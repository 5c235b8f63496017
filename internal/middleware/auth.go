package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/offbeatoasis/oasis/internal/services"
)

// Auth accepts either a JWT issued by the auth service or a raw API key
// as the bearer credential. Tokens contain dots, keys do not; that is
// the whole dispatch.
func Auth(authService *services.AuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_AUTHORIZATION",
					"message": "Authorization header is required",
				},
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_AUTHORIZATION_FORMAT",
					"message": "Authorization header must be in format 'Bearer <token>'",
				},
			})
			c.Abort()
			return
		}
		tokenString := tokenParts[1]

		if !strings.Contains(tokenString, ".") {
			tier, err := authService.ValidateAPIKey(tokenString)
			if err != nil {
				logger.WithError(err).Warn("Invalid API key")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{
						"code":    "INVALID_API_KEY",
						"message": "Invalid API key",
					},
				})
				c.Abort()
				return
			}

			c.Set("client_id", uuid.New())
			c.Set("tier", tier)
			c.Set("api_key", tokenString)
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.WithError(err).Warn("Invalid JWT token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired token",
				},
			})
			c.Abort()
			return
		}

		c.Set("client_id", claims.ClientID)
		c.Set("tier", claims.Tier)
		c.Set("api_key", claims.APIKey)
		c.Next()
	}
}

// ClientFromContext returns the authenticated client identity set by
// Auth. Only call it from handlers behind the middleware.
func ClientFromContext(c *gin.Context) (uuid.UUID, string) {
	clientID, _ := c.Get("client_id")
	tier, _ := c.Get("tier")
	return clientID.(uuid.UUID), tier.(string)
}

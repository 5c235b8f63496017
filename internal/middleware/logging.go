package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger emits one structured line per request. Beyond the usual
// method/path/status fields it picks up what this service attaches along
// the way: the userId path parameter on recommendation requests, the
// authenticated client_id, and the X-Cache verdict set by the response
// cache.
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":    status,
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      path,
		}
		if query != "" {
			fields["query"] = query
		}
		if userID := c.Param("userId"); userID != "" {
			fields["user_id"] = userID
		}
		if clientID, ok := c.Get("client_id"); ok {
			fields["client_id"] = clientID
		}
		if verdict := c.Writer.Header().Get("X-Cache"); verdict != "" {
			fields["cache"] = verdict
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// Recovery converts panics into the service's standard error envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := logrus.Fields{
			"panic":     recovered,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
		}
		if clientID, ok := c.Get("client_id"); ok {
			fields["client_id"] = clientID
		}
		logger.WithFields(fields).Error("Panic recovered")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": "Internal server error",
			},
		})
	})
}

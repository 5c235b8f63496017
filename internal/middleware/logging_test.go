package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capturedLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("request fields include user id and cache verdict", func(t *testing.T) {
		logger, buf := capturedLogger()

		router := gin.New()
		router.Use(Logger(logger))
		router.GET("/api/v1/recommendations/:userId", func(c *gin.Context) {
			c.Set("client_id", "client-7")
			c.Header("X-Cache", "MISS")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/42?count=3", nil)
		router.ServeHTTP(w, req)

		entry := lastLogLine(t, buf)
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, float64(http.StatusOK), entry["status"])
		assert.Equal(t, "/api/v1/recommendations/42", entry["path"])
		assert.Equal(t, "count=3", entry["query"])
		assert.Equal(t, "42", entry["user_id"])
		assert.Equal(t, "client-7", entry["client_id"])
		assert.Equal(t, "MISS", entry["cache"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		logger, buf := capturedLogger()

		router := gin.New()
		router.Use(Logger(logger))
		router.GET("/missing", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		entry := lastLogLine(t, buf)
		assert.Equal(t, "warning", entry["level"])
		assert.NotContains(t, entry, "user_id")
		assert.NotContains(t, entry, "cache")
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := capturedLogger()

	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["error"]["code"])

	entry := lastLogLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "kaboom", entry["panic"])
	assert.Equal(t, "/boom", entry["path"])
}

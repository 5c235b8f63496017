package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheConfig controls the Redis response cache.
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

type cachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache serves repeated GET requests from Redis. Recommendations are
// recomputed from the full dataset on every miss, so even a short TTL
// removes most of the pipeline cost for hot users. Disabled transparently
// when no Redis client is configured.
func Cache(redisClient *redis.Client, cfg *CacheConfig, logger *logrus.Logger) gin.HandlerFunc {
	if redisClient == nil {
		logger.Warn("Redis client not available, response caching disabled")
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || skipCaching(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := cacheKey(c, cfg.KeyPrefix)
		if data, err := redisClient.Get(c.Request.Context(), key).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		writer := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.status < 200 || writer.status >= 300 || len(writer.body) == 0 {
			return
		}
		data, err := json.Marshal(cachedResponse{
			StatusCode:  writer.status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body,
		})
		if err != nil {
			return
		}

		ttl := cfg.TTL
		if ttl == 0 {
			ttl = 5 * time.Minute
		}
		if err := redisClient.Set(context.Background(), key, data, ttl).Err(); err != nil {
			logger.WithError(err).WithField("cache_key", key).Warn("Failed to cache response")
		}
	}
}

type cacheWriter struct {
	gin.ResponseWriter
	body   []byte
	status int
}

func (w *cacheWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = w.ResponseWriter.Status()
	}
	w.body = append(w.body, data...)
	return w.ResponseWriter.Write(data)
}

func (w *cacheWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func cacheKey(c *gin.Context, prefix string) string {
	components := strings.Join([]string{
		c.Request.Method,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
	}, ":")
	hash := sha256.Sum256([]byte(components))
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}

func skipCaching(path string) bool {
	for _, skip := range []string{"/health", "/metrics"} {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"moneta/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that tags each request with a
// unique ID and logs method, path, status, latency, and client IP. Health
// probes are tagged but not logged.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		if c.Request.URL.Path == "/api/health" {
			return
		}

		latency := time.Since(start)
		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

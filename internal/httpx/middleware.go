package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/logger"
)

const (
	requestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID returns the id assigned to the request by WithLogging
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// WithLogging assigns a request id and logs the start and completion of each request
func WithLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		log.Debug("request_started",
			fmt.Sprintf("%s %s", c.Request.Method, path),
			requestID,
			map[string]interface{}{
				"method":      c.Request.Method,
				"path":        path,
				"remote_addr": c.ClientIP(),
				"user_agent":  c.Request.UserAgent(),
			})

		c.Next()

		status := c.Writer.Status()
		log.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", c.Request.Method, path, status),
			requestID,
			map[string]interface{}{
				"method":      c.Request.Method,
				"path":        path,
				"status_code": status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	}
}

// Timeout bounds the request context of every handler
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

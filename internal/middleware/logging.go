package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "request_id"
)

// RequestID propagates the caller's request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID retrieves the request id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}

// Logger middleware logs request details and records HTTP metrics
func Logger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// Route template keeps the label set bounded
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, strconv.Itoa(status), latency.Seconds())

		l := logger.WithRequestID(GetRequestID(c))
		if userID, ok := GetUserID(c); ok {
			l = l.WithUserID(userID)
		}
		if len(c.Errors) > 0 {
			l = l.WithError(c.Errors.Last())
		}
		l.LogHTTPRequest(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, latency)
	}
}

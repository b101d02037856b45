package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidpech/user_service/internal/app/diagnostics"
	"github.com/kidpech/user_service/internal/infrastructure/logging"
	"github.com/kidpech/user_service/internal/infrastructure/monitoring"
)

// unmatchedRoute labels requests that hit no route, keeping metric
// cardinality bounded no matter what paths clients request.
const unmatchedRoute = "unmatched"

// RequestLogger logs one line per request, appends it to the debug buffer
// and records request metrics. It expects RequestID to run first.
func RequestLogger(logger *zap.Logger, buffer *diagnostics.LogBuffer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		logging.WithRequestID(logger, requestID(c)).Info("request",
			zap.String("method", method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.String("status", status),
			zap.Duration("latency", latency),
		)
		if buffer != nil {
			buffer.Append(start.UTC().Format(time.RFC3339) + " " + method + " " + route + " -> " + status)
		}
		monitoring.ObserveRequest(route, method, status, latency.Seconds())
	}
}

// requestID returns the id set by RequestID, falling back to the response
// header when the context value is absent.
func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return c.Writer.Header().Get(RequestIDHeader)
}

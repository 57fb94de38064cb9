package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderRouteModel   = "X-Route-Model"
	HeaderRouteAttempt = "X-Route-Attempt"
)

// Logger writes one access log line per request. Routed requests also carry
// the model that answered and the attempt it answered on.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}

		if m := c.Writer.Header().Get(HeaderRouteModel); m != "" {
			fields = append(fields, zap.String("model", m))
		}
		if a := c.Writer.Header().Get(HeaderRouteAttempt); a != "" {
			fields = append(fields, zap.String("attempt", a))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("Incoming Request", fields...)
		case status >= 400:
			logger.Warn("Incoming Request", fields...)
		default:
			logger.Info("Incoming Request", fields...)
		}
	}
}

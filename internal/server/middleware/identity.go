package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/store"
)

const HeaderAppName = "X-App-Name"

// Identity tags the request context with the calling app, taken from
// X-App-Name or, failing that, the OpenRouter style X-Title header.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		appName := strings.TrimSpace(c.GetHeader(HeaderAppName))
		if appName == "" {
			appName = strings.TrimSpace(c.GetHeader("X-Title"))
		}
		if appName != "" {
			ctx := context.WithValue(c.Request.Context(), store.ContextKeyAppName, appName)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

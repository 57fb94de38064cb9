package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/pkg/api"
)

// KeyID is the short, non-secret identifier logged for an API key.
func KeyID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "key_" + hex.EncodeToString(sum[:])[:12]
}

// Auth checks for a valid Bearer token in the Authorization header.
// With no keys configured every request passes and is tagged anonymous.
func Auth(staticKeys []string) gin.HandlerFunc {
	keys := make(map[string]bool, len(staticKeys))
	for _, k := range staticKeys {
		if k != "" {
			keys[k] = true
		}
	}

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(api.UnauthorizedError("Missing Authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			_ = c.Error(api.UnauthorizedError("Invalid Authorization header format"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(parts[1])
		if !keys[token] {
			_ = c.Error(api.UnauthorizedError("Invalid API Key"))
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), store.ContextKeyAPIKey, KeyID(token))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

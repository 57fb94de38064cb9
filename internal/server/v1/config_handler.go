package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/gateway"
)

type ConfigHandler struct {
	router  config.RouterConfig
	service gateway.Service
}

func NewConfigHandler(cfg config.RouterConfig, service gateway.Service) *ConfigHandler {
	return &ConfigHandler{router: cfg, service: service}
}

// Get returns the routing settings in effect. Secrets are never included.
//
// GET /v1/router
func (h *ConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":       h.router.Provider,
		"default_order":  h.service.DefaultOrder(),
		"popular_models": h.router.PopularModels,
		"retry_delay":    h.router.RetryDelay.String(),
		"timeout":        h.router.Timeout.String(),
		"app_name":       h.router.AppName,
	})
}

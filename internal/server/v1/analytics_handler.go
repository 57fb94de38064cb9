package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/analytics"
	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(api.BadRequestError("Invalid '" + name + "' parameter"))
		return 0, false
	}
	return n, true
}

// GetUsage
//
// GET /v1/analytics/usage?days=
func (h *AnalyticsHandler) GetUsage(c *gin.Context) {
	days, ok := intQuery(c, "days", analytics.DefaultDays)
	if !ok {
		return
	}

	overview, err := h.service.GetUsageOverview(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch analytics", err))
		return
	}

	c.JSON(http.StatusOK, overview)
}

// RecentRoutes
//
// GET /v1/routes/recent?limit=
func (h *AnalyticsHandler) RecentRoutes(c *gin.Context) {
	limit, ok := intQuery(c, "limit", analytics.DefaultRecentSize)
	if !ok {
		return
	}

	logs, err := h.service.GetRecentRoutes(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch routes", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   logs,
	})
}

// GetRoute
//
// GET /v1/routes/:id
func (h *AnalyticsHandler) GetRoute(c *gin.Context) {
	log, err := h.service.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(api.NotFoundError("route not found"))
			return
		}
		_ = c.Error(api.InternalError("Failed to fetch route", err))
		return
	}

	c.JSON(http.StatusOK, log)
}

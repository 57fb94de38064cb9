package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/catalog"
	"github.com/nulzo/openroute/internal/gateway"
	"github.com/nulzo/openroute/pkg/api"
)

type ModelHandler struct {
	service gateway.Service
}

func NewModelHandler(service gateway.Service) *ModelHandler {
	return &ModelHandler{service: service}
}

// ListModels
//
// GET /v1/models?provider=&id=&modality=
func (h *ModelHandler) ListModels(c *gin.Context) {
	filter := api.ModelFilter{
		Provider: c.Query("provider"),
		ID:       c.Query("id"),
		Modality: c.Query("modality"),
	}

	models, err := h.service.ListModels(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.ModelList{Object: "list", Data: models})
}

// PopularModels
//
// GET /v1/models/popular?limit=
func (h *ModelHandler) PopularModels(c *gin.Context) {
	limit := catalog.DefaultPopularLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(api.BadRequestError("Invalid 'limit' parameter"))
			return
		}
		limit = n
	}

	models, err := h.service.PopularModels(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.ModelList{Object: "list", Data: models})
}

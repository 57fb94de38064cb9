package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/openroute/internal/gateway"
	"github.com/nulzo/openroute/internal/server/middleware"
	"github.com/nulzo/openroute/internal/server/validator"
	"github.com/nulzo/openroute/pkg/api"
)

type ChatHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewChatHandler(service gateway.Service, v *validator.Validator) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: v,
	}
}

func (h *ChatHandler) bind(c *gin.Context) (*api.ChatRequest, bool) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return nil, false
	}

	if req.Stream {
		_ = c.Error(api.BadRequestError("streaming is not supported, set \"stream\" to false"))
		return nil, false
	}

	return &req, true
}

func setRouteHeaders(c *gin.Context, result *api.RouteResult) {
	if m := result.Model(); m != "" {
		c.Header(middleware.HeaderRouteModel, m)
	}
	c.Header(middleware.HeaderRouteAttempt, strconv.Itoa(result.AttemptNumber))
}

// CreateCompletion is the OpenAI compatible endpoint. The body of a
// successful call is the upstream response untouched.
//
// POST /v1/chat/completions
func (h *ChatHandler) CreateCompletion(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.service.Chat(c.Request.Context(), req)
	if result != nil {
		setRouteHeaders(c, result)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result.Response)
}

// Route exposes the full routing outcome. A failed route answers 502 with
// the same body shape.
//
// POST /v1/route
func (h *ChatHandler) Route(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result := h.service.Route(c.Request.Context(), req, gateway.ResolveOrder(req))
	setRouteHeaders(c, result)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

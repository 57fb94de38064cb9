package agent

import (
	"context"
	"testing"

	"github.com/nulzo/openroute/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRouter replies with one canned assistant message per call.
type scriptedRouter struct {
	replies  []api.ChatMessage
	fail     bool
	requests []*api.ChatRequest
	orders   [][]string
}

func (s *scriptedRouter) Route(_ context.Context, req *api.ChatRequest, order []string) *api.RouteResult {
	cp := *req
	cp.Messages = append([]api.ChatMessage(nil), req.Messages...)
	s.requests = append(s.requests, &cp)
	s.orders = append(s.orders, order)

	if s.fail || len(s.replies) == 0 {
		return &api.RouteResult{AttemptNumber: 2, Error: api.ErrAllModelsFailed}
	}

	msg := s.replies[0]
	s.replies = s.replies[1:]
	used := "m/one"
	return &api.RouteResult{
		Success:       true,
		ModelUsed:     &used,
		AttemptNumber: 1,
		Response:      &api.ChatResponse{Choices: []api.Choice{{Message: &msg}}},
	}
}

func toolCall(id, name, args string) api.ChatMessage {
	return api.ChatMessage{
		Role: string(api.Assistant),
		ToolCalls: []api.ToolCall{{
			ID:       id,
			Type:     "function",
			Function: api.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func TestWeather(t *testing.T) {
	assert.Equal(t, "It's cold and wet.", Weather("Yorkshire"))
	assert.Equal(t, "It's cold and wet.", Weather("YORKSHIRE"))
	assert.Equal(t, "It's warm and sunny.", Weather("Lisbon"))
	assert.Equal(t, "It's warm and sunny.", Weather(" Yorkshire "))
}

func TestRun_ToolLoop(t *testing.T) {
	router := &scriptedRouter{replies: []api.ChatMessage{
		toolCall("call_1", "get_weather", `{"location":"yorkshire"}`),
		api.TextMessage(api.Assistant, "It is cold and wet in Yorkshire."),
	}}
	a := New(router, NewRegistry(WeatherTool{}), WithOrder([]string{"m/one", "m/two"}))

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "what's the weather in yorkshire?")})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, "It is cold and wet in Yorkshire.", res.Answer())
	require.Len(t, res.Messages, 4)

	toolMsg := res.Messages[2]
	assert.Equal(t, string(api.ToolRole), toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Equal(t, "It's cold and wet.", toolMsg.Content.String())

	// tools are offered and the order is forwarded on every call
	require.Len(t, router.requests, 2)
	require.Len(t, router.requests[0].Tools, 1)
	assert.Equal(t, "get_weather", router.requests[0].Tools[0].Function.Name)
	assert.Equal(t, []string{"m/one", "m/two"}, router.orders[1])
	assert.Len(t, router.requests[1].Messages, 3)
}

func TestRun_UnknownToolIsReported(t *testing.T) {
	router := &scriptedRouter{replies: []api.ChatMessage{
		toolCall("call_1", "get_stock_price", `{}`),
		api.TextMessage(api.Assistant, "sorry"),
	}}
	a := New(router, NewRegistry(WeatherTool{}))

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "hi")})
	require.NoError(t, err)
	assert.Equal(t, "ERROR: unknown tool call: get_stock_price", res.Messages[2].Content.String())
}

func TestRun_BadArguments(t *testing.T) {
	router := &scriptedRouter{replies: []api.ChatMessage{
		toolCall("call_1", "get_weather", `{"location": 42}`),
		api.TextMessage(api.Assistant, "done"),
	}}
	a := New(router, NewRegistry(WeatherTool{}))

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "hi")})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[2].Content.String(), "location must be a string")
}

func TestRun_MaxSteps(t *testing.T) {
	var replies []api.ChatMessage
	for i := 0; i < 5; i++ {
		replies = append(replies, toolCall("c", "get_weather", `{"location":"x"}`))
	}
	router := &scriptedRouter{replies: replies}
	a := New(router, NewRegistry(WeatherTool{}), WithMaxSteps(3))

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "hi")})
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, 3, res.Steps)
}

func TestRun_RoutingFailure(t *testing.T) {
	a := New(&scriptedRouter{fail: true}, nil)

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), api.ErrAllModelsFailed)
	assert.Equal(t, 1, res.Steps)
	require.Len(t, res.Routes, 1)
	assert.Nil(t, res.Routes[0].ModelUsed)
}

func TestRun_NoToolsOmitsField(t *testing.T) {
	router := &scriptedRouter{replies: []api.ChatMessage{api.TextMessage(api.Assistant, "hello")}}
	a := New(router, nil, WithRequest(api.ChatRequest{Temperature: api.Ptr(0.2)}))

	res, err := a.Run(context.Background(), []api.ChatMessage{api.TextMessage(api.User, "hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Answer())
	assert.Nil(t, router.requests[0].Tools)
	require.NotNil(t, router.requests[0].Temperature)
	assert.Equal(t, 0.2, *router.requests[0].Temperature)
}

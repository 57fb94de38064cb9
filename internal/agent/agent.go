// Package agent runs a ReAct style loop: the model is prompted with the
// available tools, any tool calls it makes are executed and fed back, and
// the loop ends once it answers without calling a tool.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/nulzo/openroute/pkg/api"
	"go.uber.org/zap"
)

const DefaultMaxSteps = 10

var ErrMaxSteps = errors.New("agent: step limit reached")

// Router is the part of the gateway the agent drives.
type Router interface {
	Route(ctx context.Context, req *api.ChatRequest, order []string) *api.RouteResult
}

type Agent struct {
	router   Router
	tools    *Registry
	order    []string
	maxSteps int
	logger   *zap.Logger
	template api.ChatRequest
}

type Option func(*Agent)

// WithOrder sets the fallback order used for every model call.
func WithOrder(order []string) Option {
	return func(a *Agent) { a.order = order }
}

func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithRequest sets generation parameters copied into every model call.
func WithRequest(tmpl api.ChatRequest) Option {
	return func(a *Agent) { a.template = tmpl }
}

func New(router Router, tools *Registry, opts ...Option) *Agent {
	a := &Agent{
		router:   router,
		tools:    tools,
		maxSteps: DefaultMaxSteps,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tools == nil {
		a.tools = NewRegistry()
	}
	return a
}

// Result is the final state of a run.
type Result struct {
	Messages []api.ChatMessage
	// Steps counts model calls.
	Steps int
	// Routes holds the routing outcome of each model call.
	Routes []*api.RouteResult
}

// Answer is the text of the last assistant message.
func (r *Result) Answer() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == string(api.Assistant) {
			return r.Messages[i].Content.String()
		}
	}
	return ""
}

// Run loops until the model stops calling tools. The returned Result holds
// the conversation so far even when err is non-nil.
func (a *Agent) Run(ctx context.Context, messages []api.ChatMessage) (*Result, error) {
	res := &Result{Messages: append([]api.ChatMessage(nil), messages...)}

	for res.Steps < a.maxSteps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		req := a.template
		req.Messages = res.Messages
		req.Tools = a.tools.Definitions()
		if len(req.Tools) == 0 {
			req.Tools = nil
		}

		route := a.router.Route(ctx, &req, a.order)
		res.Steps++
		res.Routes = append(res.Routes, route)

		if !route.Success {
			return res, fmt.Errorf("agent step %d: %s", res.Steps, route.Error)
		}

		msg := route.Response.FirstMessage()
		if msg == nil {
			return res, fmt.Errorf("agent step %d: %s returned no message", res.Steps, route.Model())
		}
		if msg.Role == "" {
			msg.Role = string(api.Assistant)
		}
		res.Messages = append(res.Messages, *msg)

		if len(msg.ToolCalls) == 0 {
			return res, nil
		}

		for _, call := range msg.ToolCalls {
			out := a.tools.Invoke(ctx, call)
			a.logger.Debug("Tool called",
				zap.String("tool", call.Function.Name),
				zap.String("args", call.Function.Arguments),
				zap.String("result", out))
			res.Messages = append(res.Messages, api.ChatMessage{
				Role:       string(api.ToolRole),
				Content:    api.Content{Text: out},
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	return res, ErrMaxSteps
}

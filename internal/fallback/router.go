// Package fallback routes a chat completion through an ordered list of models,
// stopping at the first one that answers.
package fallback

import (
	"context"
	"fmt"
	"time"

	"github.com/nulzo/openroute/internal/platform/logger"
	"github.com/nulzo/openroute/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultDelay is the pause inserted between two attempts.
const DefaultDelay = time.Second

// Dispatcher performs exactly one chat completion call for req.Model.
type Dispatcher interface {
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Option func(*Router)

// WithDelay sets the constant pause between attempts.
func WithDelay(d time.Duration) Option {
	return func(r *Router) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithSleep replaces the wait between attempts, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(r *Router) {
		r.sleep = fn
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		r.log = l
	}
}

// Router holds only immutable configuration and is safe for concurrent use.
type Router struct {
	dispatcher   Dispatcher
	defaultOrder []string
	delay        time.Duration
	sleep        SleepFunc
	log          *zap.Logger
	tracer       trace.Tracer
}

func New(dispatcher Dispatcher, defaultOrder []string, opts ...Option) *Router {
	r := &Router{
		dispatcher:   dispatcher,
		defaultOrder: append([]string(nil), defaultOrder...),
		delay:        DefaultDelay,
		sleep:        sleepContext,
		tracer:       otel.Tracer("github.com/nulzo/openroute/internal/fallback"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get()
	}
	return r
}

// DefaultOrder returns a copy of the configured order.
func (r *Router) DefaultOrder() []string {
	return append([]string(nil), r.defaultOrder...)
}

// Route tries each model of order (or the default order when order is empty)
// and returns on the first success. A failed result carries the number of
// attempts made, which is len(order) unless ctx ended first.
func (r *Router) Route(ctx context.Context, req *api.ChatRequest, order []string) *api.RouteResult {
	if len(order) == 0 {
		order = r.defaultOrder
	}

	ctx, span := r.tracer.Start(ctx, "fallback.Route",
		trace.WithAttributes(attribute.Int("route.candidates", len(order))))
	defer span.End()

	result := &api.RouteResult{Attempts: make([]api.Attempt, 0, len(order))}

	for i, model := range order {
		attempt := r.try(ctx, req, model, i+1)
		result.Attempts = append(result.Attempts, attempt.Attempt)

		if attempt.resp != nil {
			used := model
			result.Success = true
			result.ModelUsed = &used
			result.AttemptNumber = attempt.Number
			result.Response = attempt.resp
			span.SetAttributes(attribute.String("route.model", model), attribute.Int("route.attempt", attempt.Number))
			return result
		}

		if i < len(order)-1 {
			if err := r.sleep(ctx, r.delay); err != nil {
				result.AttemptNumber = attempt.Number
				result.Error = fmt.Sprintf("routing aborted after %d attempts: %v", attempt.Number, err)
				span.SetStatus(codes.Error, result.Error)
				return result
			}
		}
	}

	result.AttemptNumber = len(order)
	result.Error = api.ErrAllModelsFailed
	span.SetStatus(codes.Error, result.Error)
	r.log.Warn("All models failed to respond", zap.Int("attempts", len(order)))
	return result
}

type attemptOutcome struct {
	api.Attempt
	resp *api.ChatResponse
}

func (r *Router) try(ctx context.Context, req *api.ChatRequest, model string, n int) attemptOutcome {
	ctx, span := r.tracer.Start(ctx, "fallback.Attempt", trace.WithAttributes(
		attribute.String("route.model", model),
		attribute.Int("route.attempt", n),
	))
	defer span.End()

	start := time.Now()
	resp, err := r.dispatcher.Chat(ctx, req.Clone(model))
	out := attemptOutcome{Attempt: api.Attempt{
		Number:    n,
		Model:     model,
		LatencyMS: time.Since(start).Milliseconds(),
	}}

	switch {
	case err != nil:
		out.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt failed")
	case resp == nil:
		out.Error = "empty response"
		span.SetStatus(codes.Error, out.Error)
	default:
		out.Success = true
		out.resp = resp
	}

	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

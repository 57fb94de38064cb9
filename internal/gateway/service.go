package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/openroute/internal/analytics"
	"github.com/nulzo/openroute/internal/catalog"
	"github.com/nulzo/openroute/internal/fallback"
	"github.com/nulzo/openroute/internal/llm"
	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/cache"
	"github.com/nulzo/openroute/internal/store/model"
	"github.com/nulzo/openroute/pkg/api"
	"go.uber.org/zap"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrNoProvider       = errors.New("no provider registered for routing")
)

// Service defines the business logic for routing requests.
type Service interface {
	// RegisterProvider makes p available for dispatch and model listing.
	RegisterProvider(ctx context.Context, p llm.Provider) error

	// Route runs the fallback chain over order, or the default order when
	// order is empty. It never returns nil.
	Route(ctx context.Context, req *api.ChatRequest, order []string) *api.RouteResult
	// Chat resolves the order from req and routes it. A failed route comes
	// back as a *api.Problem alongside the result.
	Chat(ctx context.Context, req *api.ChatRequest) (*api.RouteResult, error)

	DefaultOrder() []string
	ListModels(ctx context.Context, filter api.ModelFilter) ([]api.Model, error)
	PopularModels(ctx context.Context, limit int) ([]api.Model, error)
}

type Options struct {
	// Primary is the provider ID every attempt is dispatched to.
	Primary       string
	DefaultOrder  []string
	PopularModels []string
	RetryDelay    time.Duration
	CacheTTL      time.Duration
	RouterOptions []fallback.Option
}

type service struct {
	logger   *zap.Logger
	ingestor analytics.Ingestor
	cache    cache.CacheService
	opts     Options
	router   *fallback.Router

	mu        sync.RWMutex
	providers map[string]llm.Provider
	catalogs  map[string]*catalog.Catalog
}

// NewService wires the fallback router to the primary provider. ingestor and
// c may be nil.
func NewService(logger *zap.Logger, ingestor analytics.Ingestor, c cache.CacheService, opts Options) Service {
	s := &service{
		logger:    logger,
		ingestor:  ingestor,
		cache:     c,
		opts:      opts,
		providers: make(map[string]llm.Provider),
		catalogs:  make(map[string]*catalog.Catalog),
	}

	routerOpts := append([]fallback.Option{
		fallback.WithDelay(opts.RetryDelay),
		fallback.WithLogger(logger),
	}, opts.RouterOptions...)
	s.router = fallback.New(primaryDispatcher{s}, opts.DefaultOrder, routerOpts...)

	return s
}

func (s *service) RegisterProvider(_ context.Context, p llm.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[p.Name()]; exists {
		return fmt.Errorf("provider %s already registered", p.Name())
	}

	s.providers[p.Name()] = p
	s.catalogs[p.Name()] = catalog.New(p, s.cache, s.opts.CacheTTL, s.opts.PopularModels, s.logger)
	s.logger.Debug("Provider registered", zap.String("id", p.Name()), zap.String("type", p.Type()))
	return nil
}

// primary returns the dispatch provider. Without a configured primary the
// only registered provider is used.
func (s *service) primary() (llm.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.opts.Primary != "" {
		if p, ok := s.providers[s.opts.Primary]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, s.opts.Primary)
	}
	if len(s.providers) == 1 {
		for _, p := range s.providers {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}

type primaryDispatcher struct {
	s *service
}

func (d primaryDispatcher) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	p, err := d.s.primary()
	if err != nil {
		return nil, err
	}
	return p.Chat(ctx, req)
}

func (s *service) DefaultOrder() []string {
	return s.router.DefaultOrder()
}

func (s *service) Route(ctx context.Context, req *api.ChatRequest, order []string) *api.RouteResult {
	start := time.Now()
	result := s.router.Route(ctx, req, order)

	candidates := len(order)
	if candidates == 0 {
		candidates = len(s.router.DefaultOrder())
	}
	s.record(ctx, req, result, candidates, time.Since(start))

	return result
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) (*api.RouteResult, error) {
	result := s.Route(ctx, req, ResolveOrder(req))
	if result.Success {
		return result, nil
	}

	return result, api.ProviderError(result.Error, nil,
		api.WithExtension("attempt_number", result.AttemptNumber),
		api.WithExtension("attempts", result.Attempts),
	)
}

// ResolveOrder picks the caller's order from a request: the models array
// wins, then an explicit model. "auto" means the default order.
func ResolveOrder(req *api.ChatRequest) []string {
	if len(req.Models) > 0 {
		return req.Models
	}
	switch strings.TrimSpace(req.Model) {
	case "", "auto", "openrouter/auto":
		return nil
	default:
		return []string{req.Model}
	}
}

func (s *service) record(ctx context.Context, req *api.ChatRequest, result *api.RouteResult, candidates int, latency time.Duration) {
	if s.ingestor == nil {
		return
	}

	now := time.Now().UTC()
	log := &model.RouteLog{
		ID:             uuid.NewString(),
		AppName:        identity(ctx, store.ContextKeyAppName, string(api.System)),
		APIKeyID:       identity(ctx, store.ContextKeyAPIKey, string(api.Anonymous)),
		RequestedModel: req.Model,
		ModelUsed:      result.Model(),
		Success:        result.Success,
		AttemptNumber:  result.AttemptNumber,
		Candidates:     candidates,
		Error:          result.Error,
		LatencyMS:      latency.Milliseconds(),
		CreatedAt:      now,
		Attempts:       make([]model.AttemptLog, 0, len(result.Attempts)),
	}

	if resp := result.Response; resp != nil {
		log.UpstreamID = resp.ID
		if len(resp.Choices) > 0 {
			log.FinishReason = resp.Choices[0].FinishReason
		}
		if resp.Usage != nil {
			log.InputTokens = resp.Usage.PromptTokens
			log.OutputTokens = resp.Usage.CompletionTokens
		}
	}

	for _, a := range result.Attempts {
		log.Attempts = append(log.Attempts, model.AttemptLog{
			Number:    a.Number,
			Model:     a.Model,
			Success:   a.Success,
			Error:     a.Error,
			LatencyMS: a.LatencyMS,
			CreatedAt: now,
		})
	}

	s.ingestor.Log(log)
}

func identity(ctx context.Context, key interface{}, def string) string {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v
	}
	return def
}

func (s *service) PopularModels(ctx context.Context, limit int) ([]api.Model, error) {
	p, err := s.primary()
	if err != nil {
		return nil, api.ProviderError("no catalog available", err)
	}

	s.mu.RLock()
	c := s.catalogs[p.Name()]
	s.mu.RUnlock()

	return c.TopPopular(ctx, limit)
}

func (s *service) ListModels(ctx context.Context, filter api.ModelFilter) ([]api.Model, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.catalogs))
	for name := range s.catalogs {
		names = append(names, name)
	}
	catalogs := make(map[string]*catalog.Catalog, len(s.catalogs))
	for k, v := range s.catalogs {
		catalogs[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(names)

	results := []api.Model{}
	var firstErr error

	for _, name := range names {
		if filter.Provider != "" && !strings.EqualFold(name, filter.Provider) {
			continue
		}

		models, err := catalogs[name].ListModels(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}

		for _, m := range models {
			m.Provider = name
			if !matches(m, filter) {
				continue
			}
			results = append(results, m)
		}
	}

	if len(results) == 0 && firstErr != nil {
		return nil, api.ProviderError("failed to list models", firstErr)
	}

	return results, nil
}

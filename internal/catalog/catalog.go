// Package catalog serves the live model listing of a provider, cached, and
// picks the popular subset of it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nulzo/openroute/internal/store/cache"
	"github.com/nulzo/openroute/pkg/api"
	"go.uber.org/zap"
)

// DefaultPopularLimit is used when TopPopular gets a non-positive limit.
const DefaultPopularLimit = 10

// Lister is the part of llm.Provider the catalog needs.
type Lister interface {
	Name() string
	Models(ctx context.Context) ([]api.Model, error)
}

type Catalog struct {
	source  Lister
	cache   cache.CacheService
	ttl     time.Duration
	popular []string
	logger  *zap.Logger
}

func New(source Lister, c cache.CacheService, ttl time.Duration, popular []string, logger *zap.Logger) *Catalog {
	return &Catalog{
		source:  source,
		cache:   c,
		ttl:     ttl,
		popular: append([]string(nil), popular...),
		logger:  logger,
	}
}

func (c *Catalog) cacheKey() string {
	return fmt.Sprintf("catalog:models:%s", c.source.Name())
}

// ListModels returns the provider's models, served from the cache when fresh.
// On upstream failure it returns an empty list together with the error.
func (c *Catalog) ListModels(ctx context.Context) ([]api.Model, error) {
	if c.cache != nil {
		var cached []api.Model
		err := c.cache.Get(ctx, c.cacheKey(), &cached)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn("Catalog cache read failed", zap.String("key", c.cacheKey()), zap.Error(err))
		}
	}

	models, err := c.source.Models(ctx)
	if err != nil {
		c.logger.Error("Failed to get models", zap.String("provider", c.source.Name()), zap.Error(err))
		return []api.Model{}, err
	}
	if models == nil {
		models = []api.Model{}
	}

	if c.cache != nil && len(models) > 0 {
		if err := c.cache.Set(ctx, c.cacheKey(), models, c.ttl); err != nil {
			c.logger.Warn("Catalog cache write failed", zap.String("key", c.cacheKey()), zap.Error(err))
		}
	}

	return models, nil
}

// Invalidate drops the cached listing so the next call hits the provider.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.cacheKey())
}

// TopPopular returns up to limit models, preferring the configured popular
// list and topping up with catalog entries.
func (c *Catalog) TopPopular(ctx context.Context, limit int) ([]api.Model, error) {
	all, err := c.ListModels(ctx)
	if len(all) == 0 {
		c.logger.Warn("No models available from API", zap.String("provider", c.source.Name()))
		return []api.Model{}, err
	}

	top := SelectPopular(all, c.popular, limit)
	c.logger.Info(fmt.Sprintf("Found %d popular models", len(top)))
	return top, nil
}

// SelectPopular walks popular in order keeping the ids present in all, then
// fills the remainder with the first entries of all not already chosen.
func SelectPopular(all []api.Model, popular []string, limit int) []api.Model {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}

	byID := make(map[string]api.Model, len(all))
	for _, m := range all {
		if _, seen := byID[m.ID]; !seen {
			byID[m.ID] = m
		}
	}

	out := make([]api.Model, 0, limit)
	chosen := make(map[string]bool, limit)

	for _, id := range popular {
		if len(out) >= limit {
			break
		}
		if m, ok := byID[id]; ok {
			out = append(out, m)
			chosen[id] = true
		}
	}

	for _, m := range all {
		if len(out) >= limit {
			break
		}
		if chosen[m.ID] {
			continue
		}
		out = append(out, m)
		chosen[m.ID] = true
	}

	return out
}

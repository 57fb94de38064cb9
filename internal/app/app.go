// Package app assembles the routing stack from configuration. Both the HTTP
// server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"github.com/nulzo/openroute/internal/analytics"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/fallback"
	"github.com/nulzo/openroute/internal/gateway"
	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/cache"
	"github.com/nulzo/openroute/internal/store/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// provider registration
	_ "github.com/nulzo/openroute/internal/llm/openai"
)

type Options struct {
	// Persist opens the SQLite store and logs every route to it.
	Persist bool
	// SkipHealth registers providers without probing them first.
	SkipHealth bool
	// RouterOptions are appended to the fallback router options.
	RouterOptions []fallback.Option
}

type App struct {
	Service   gateway.Service
	Analytics analytics.Service
	Providers int

	repo     store.Repository
	ingestor analytics.Ingestor
	closers  []func() error
}

// New builds the gateway and registers the configured providers.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{}

	c, err := newCache(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		a.closers = append(a.closers, rc.Close)
	}

	if opts.Persist {
		repo, err := sqlite.NewSQLiteStorage(cfg.Database.Path, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.repo = repo
		a.ingestor = analytics.NewIngestor(logger, repo)
		a.ingestor.Start(ctx)
		a.Analytics = analytics.NewService(repo)
	}

	a.Service = gateway.NewService(logger, a.ingestor, c, gateway.Options{
		Primary:       cfg.Router.Provider,
		DefaultOrder:  cfg.Router.DefaultOrder,
		PopularModels: cfg.Router.PopularModels,
		RetryDelay:    cfg.Router.RetryDelay,
		CacheTTL:      cfg.Catalog.CacheTTL,
		RouterOptions: opts.RouterOptions,
	})

	a.Providers = gateway.BootstrapProviders(ctx, a.Service, cfg.Providers, gateway.BootstrapOptions{
		Router:     cfg.Router,
		SkipHealth: opts.SkipHealth,
	}, logger)

	return a, nil
}

// newCache prefers Redis when enabled and reachable, falling back to memory.
func newCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (cache.CacheService, error) {
	if !cfg.Enabled {
		return cache.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	rc, err := cache.NewRedisCache(ctx, client, "openroute:")
	if err != nil {
		_ = client.Close()
		logger.Warn("Redis unavailable, using in-memory cache", zap.String("addr", cfg.Addr), zap.Error(err))
		return cache.NewMemoryCache(), nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return rc, nil
}

// Close flushes pending route logs and releases the store and cache.
func (a *App) Close() {
	if a.ingestor != nil {
		a.ingestor.Stop()
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	for _, c := range a.closers {
		_ = c()
	}
}

package store

import (
	"context"
	"errors"

	"github.com/nulzo/openroute/internal/store/model"
)

type contextKey string

const (
	ContextKeyAppName contextKey = "app_name"
	ContextKeyAPIKey  contextKey = "api_key"
)

var ErrNotFound = errors.New("record not found")

// Repository is the main contract for the data layer.
type Repository interface {
	Routes() RouteRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type RouteRepository interface {
	// Log stores a routing call together with its attempts.
	Log(ctx context.Context, log *model.RouteLog) error
	// GetByID returns a single routing call, attempts included.
	GetByID(ctx context.Context, id string) (*model.RouteLog, error)
	// GetRecent returns the last N routing calls, newest first.
	GetRecent(ctx context.Context, limit int) ([]model.RouteLog, error)
	// GetDailyStats returns aggregated stats grouped by day.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
	// GetModelStats returns per-model attempt outcomes over the last N days.
	GetModelStats(ctx context.Context, days int) ([]model.ModelStats, error)
}

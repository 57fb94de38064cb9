package analytics

import (
	"context"

	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/model"
)

const (
	DefaultDays       = 7
	DefaultRecentSize = 20
	MaxRecentSize     = 200
)

// UsageOverview bundles the per-day and per-model views of routing traffic.
type UsageOverview struct {
	Days   int                `json:"days"`
	Daily  []model.DailyStats `json:"daily"`
	Models []model.ModelStats `json:"models"`
}

type Service interface {
	GetUsageOverview(ctx context.Context, days int) (*UsageOverview, error)
	GetRecentRoutes(ctx context.Context, limit int) ([]model.RouteLog, error)
	GetRoute(ctx context.Context, id string) (*model.RouteLog, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetUsageOverview(ctx context.Context, days int) (*UsageOverview, error) {
	if days <= 0 {
		days = DefaultDays
	}

	daily, err := s.repo.Routes().GetDailyStats(ctx, days)
	if err != nil {
		return nil, err
	}

	models, err := s.repo.Routes().GetModelStats(ctx, days)
	if err != nil {
		return nil, err
	}

	return &UsageOverview{Days: days, Daily: daily, Models: models}, nil
}

func (s *service) GetRecentRoutes(ctx context.Context, limit int) ([]model.RouteLog, error) {
	if limit <= 0 {
		limit = DefaultRecentSize
	}
	if limit > MaxRecentSize {
		limit = MaxRecentSize
	}
	return s.repo.Routes().GetRecent(ctx, limit)
}

func (s *service) GetRoute(ctx context.Context, id string) (*model.RouteLog, error) {
	return s.repo.Routes().GetByID(ctx, id)
}

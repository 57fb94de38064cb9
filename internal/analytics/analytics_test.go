package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu       sync.Mutex
	logs     []*model.RouteLog
	failIDs  map[string]bool
	lastDays int
	lastLim  int
}

func (f *fakeRepo) Routes() store.RouteRepository { return f }
func (f *fakeRepo) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	return fn(f)
}
func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) Log(_ context.Context, log *model.RouteLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[log.ID] {
		return errors.New("disk full")
	}
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*model.RouteLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) GetRecent(_ context.Context, limit int) ([]model.RouteLog, error) {
	f.lastLim = limit
	return []model.RouteLog{}, nil
}

func (f *fakeRepo) GetDailyStats(_ context.Context, days int) ([]model.DailyStats, error) {
	f.lastDays = days
	return []model.DailyStats{{Date: "2025-01-01", TotalRequests: 3}}, nil
}

func (f *fakeRepo) GetModelStats(_ context.Context, days int) ([]model.ModelStats, error) {
	return []model.ModelStats{{Model: "a/one", Attempts: 3, Successes: 2}}, nil
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

func TestIngestor_FlushOnBatchSize(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(2), WithFlushInterval(time.Hour))
	ing.Start(context.Background())
	defer ing.Stop()

	ing.Log(&model.RouteLog{ID: "1"})
	ing.Log(&model.RouteLog{ID: "2"})

	assert.Eventually(t, func() bool { return repo.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestIngestor_FlushOnTicker(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(100), WithFlushInterval(20*time.Millisecond))
	ing.Start(context.Background())
	defer ing.Stop()

	ing.Log(&model.RouteLog{ID: "1"})

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestIngestor_StopFlushesPending(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(100), WithFlushInterval(time.Hour))
	ing.Start(context.Background())

	for i := 0; i < 5; i++ {
		ing.Log(&model.RouteLog{ID: fmt.Sprintf("r%d", i)})
	}
	ing.Stop()

	assert.Equal(t, 5, repo.count())

	// after Stop, logs are dropped instead of panicking
	ing.Log(&model.RouteLog{ID: "late"})
	ing.Stop()
	assert.Equal(t, 5, repo.count())
}

func TestIngestor_ContextCancelDrains(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(100), WithFlushInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	ing.Log(&model.RouteLog{ID: "queued"})
	ing.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestIngestor_LogsAfterCancelArePersisted(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(100), WithFlushInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	ing.Start(ctx)
	cancel()

	// a request that was still routing when shutdown began
	ing.Log(&model.RouteLog{ID: "in-flight"})
	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 10*time.Millisecond)

	ing.Log(&model.RouteLog{ID: "last"})
	ing.Stop()

	assert.Equal(t, 2, repo.count())
	_, err := repo.GetByID(context.Background(), "in-flight")
	assert.NoError(t, err)
}

func TestIngestor_PersistErrorDoesNotBlock(t *testing.T) {
	repo := &fakeRepo{failIDs: map[string]bool{"bad": true}}
	ing := NewIngestor(zap.NewNop(), repo, WithBatchSize(2), WithFlushInterval(time.Hour))
	ing.Start(context.Background())

	ing.Log(&model.RouteLog{ID: "bad"})
	ing.Log(&model.RouteLog{ID: "good"})
	ing.Stop()

	require.Equal(t, 1, repo.count())
	got, err := repo.GetByID(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "good", got.ID)
}

func TestIngestor_BufferFullDrops(t *testing.T) {
	repo := &fakeRepo{}
	ing := NewIngestor(zap.NewNop(), repo, WithBufferSize(1), WithBatchSize(100), WithFlushInterval(time.Hour))

	// worker not started: second log has nowhere to go
	ing.Log(&model.RouteLog{ID: "1"})
	ing.Log(&model.RouteLog{ID: "2"})

	ing.Start(context.Background())
	ing.Stop()
	assert.Equal(t, 1, repo.count())
}

func TestService_Defaults(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	overview, err := svc.GetUsageOverview(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDays, overview.Days)
	assert.Equal(t, DefaultDays, repo.lastDays)
	assert.Len(t, overview.Daily, 1)
	assert.Len(t, overview.Models, 1)

	_, err = svc.GetRecentRoutes(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecentSize, repo.lastLim)

	_, err = svc.GetRecentRoutes(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxRecentSize, repo.lastLim)

	_, err = svc.GetRoute(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

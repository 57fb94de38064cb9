package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/model"
	"go.uber.org/zap"
)

const (
	DefaultBufferSize = 10000
	DefaultBatchSize  = 50
	DefaultFlushEvery = 5 * time.Second
)

// Ingestor handles the asynchronous persistence of route logs.
type Ingestor interface {
	Log(log *model.RouteLog)
	Start(ctx context.Context)
	// Stop flushes whatever is buffered and waits for the worker to exit.
	Stop()
}

type IngestorOption func(*ingestor)

func WithBatchSize(n int) IngestorOption {
	return func(i *ingestor) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) IngestorOption {
	return func(i *ingestor) {
		if d > 0 {
			i.flushTime = d
		}
	}
}

func WithBufferSize(n int) IngestorOption {
	return func(i *ingestor) {
		if n > 0 {
			i.bufferSize = n
		}
	}
}

type ingestor struct {
	logger     *zap.Logger
	repo       store.Repository
	logChan    chan *model.RouteLog
	bufferSize int
	batchSize  int
	flushTime  time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewIngestor(logger *zap.Logger, repo store.Repository, opts ...IngestorOption) Ingestor {
	i := &ingestor{
		logger:     logger,
		repo:       repo,
		bufferSize: DefaultBufferSize,
		batchSize:  DefaultBatchSize,
		flushTime:  DefaultFlushEvery,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logChan = make(chan *model.RouteLog, i.bufferSize)
	return i
}

func (i *ingestor) Log(log *model.RouteLog) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		i.logger.Warn("Analytics ingestor stopped, dropping log", zap.String("route_id", log.ID))
		return
	}

	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("Analytics buffer full, dropping log", zap.String("route_id", log.ID))
	}
}

// Start runs the worker. Cancelling ctx flushes what is buffered but does not
// end the worker: requests still in flight during shutdown keep logging, and
// only Stop ends it.
func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	close(i.logChan)
	i.mu.Unlock()

	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	// the request contexts are long gone by now, keep only the values
	writeCtx := context.WithoutCancel(ctx)
	cancelled := ctx.Done()

	batch := make([]*model.RouteLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, log := range batch {
			if err := i.repo.Routes().Log(writeCtx, log); err != nil {
				i.logger.Error("Failed to persist route log", zap.String("id", log.ID), zap.Error(err))
			}
		}
		i.logger.Debug("Flushed route logs", zap.Int("count", len(batch)))
		batch = batch[:0]
	}

	for {
		select {
		case log, ok := <-i.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, log)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-cancelled:
			// shutting down: persist eagerly from now on
			cancelled = nil
			i.batchSize = 1
			flush()
		}
	}
}

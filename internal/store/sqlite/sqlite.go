package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/openroute/internal/store"
	"github.com/nulzo/openroute/internal/store/model"
)

// DB is satisfied by both *sqlx.DB and *sqlx.Tx
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // needed to open transactions
	executor DB       // *sqlx.DB or *sqlx.Tx
	inTx     bool
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
		inTx:     true,
	}

	if err := fn(txRepo); err != nil {
		// rollback error is secondary
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Routes() store.RouteRepository {
	return &routeRepo{db: r.executor, parent: r}
}

type routeRepo struct {
	db     DB
	parent *SqliteRepository
}

func (r *routeRepo) Log(ctx context.Context, log *model.RouteLog) error {
	// the route and its attempts land together or not at all
	if !r.parent.inTx {
		return r.parent.WithTx(ctx, func(repo store.Repository) error {
			return repo.Routes().Log(ctx, log)
		})
	}

	query := `
	INSERT INTO route_logs (
		id, app_name, api_key_id, requested_model, model_used,
		success, attempt_number, candidates, error,
		upstream_id, finish_reason, input_tokens, output_tokens,
		latency_ms, created_at
	) VALUES (
		:id, :app_name, :api_key_id, :requested_model, :model_used,
		:success, :attempt_number, :candidates, :error,
		:upstream_id, :finish_reason, :input_tokens, :output_tokens,
		:latency_ms, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return err
	}

	queryAttempt := `
	INSERT INTO route_attempts (route_id, number, model, success, error, latency_ms, created_at)
	VALUES (:route_id, :number, :model, :success, :error, :latency_ms, :created_at)`
	for i := range log.Attempts {
		a := &log.Attempts[i]
		a.RouteID = log.ID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = log.CreatedAt
		}
		if _, err := r.db.NamedExecContext(ctx, queryAttempt, a); err != nil {
			return fmt.Errorf("failed to log attempt %d: %w", a.Number, err)
		}
	}

	return nil
}

func (r *routeRepo) GetByID(ctx context.Context, id string) (*model.RouteLog, error) {
	var log model.RouteLog
	if err := r.db.GetContext(ctx, &log, `SELECT * FROM route_logs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var attempts []model.AttemptLog
	query := `SELECT * FROM route_attempts WHERE route_id = ? ORDER BY number ASC`
	if err := r.db.SelectContext(ctx, &attempts, query, id); err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	log.Attempts = attempts

	return &log, nil
}

func (r *routeRepo) GetRecent(ctx context.Context, limit int) ([]model.RouteLog, error) {
	logs := []model.RouteLog{}
	query := `SELECT * FROM route_logs ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}

func (r *routeRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	stats := []model.DailyStats{}
	query := `
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS total_requests,
			COALESCE(SUM(success), 0) AS succeeded,
			COALESCE(SUM(input_tokens + output_tokens), 0) AS total_tokens,
			COALESCE(AVG(attempt_number), 0) AS avg_attempts,
			COALESCE(AVG(latency_ms), 0) AS avg_latency
		FROM route_logs
		WHERE created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC
	`
	// sqlite offset format is '-7 days'
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}

func (r *routeRepo) GetModelStats(ctx context.Context, days int) ([]model.ModelStats, error) {
	stats := []model.ModelStats{}
	query := `
		SELECT
			model,
			COUNT(*) AS attempts,
			COALESCE(SUM(success), 0) AS successes,
			COALESCE(AVG(latency_ms), 0) AS avg_latency
		FROM route_attempts
		WHERE created_at >= DATE('now', ?)
		GROUP BY model
		ORDER BY successes DESC, attempts DESC, model ASC
	`
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}

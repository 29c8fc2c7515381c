package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS problem_models (
	problem_id        TEXT PRIMARY KEY,
	slope             DOUBLE PRECISION,
	intercept         DOUBLE PRECISION,
	variance          DOUBLE PRECISION,
	difficulty        DOUBLE PRECISION,
	discrimination    DOUBLE PRECISION,
	irt_loglikelihood DOUBLE PRECISION,
	irt_users         INTEGER,
	is_experimental   BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps problem models in a PostgreSQL table through a pgx
// pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewPostgresStore connects to dsn and ensures the table exists.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres needs a dsn", ErrUnknownDriver)
	}
	cfg := newStoreConfig("postgres-store", opts)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	s := &PostgresStore{pool: pool, log: cfg.log}
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreModels(n)
	}
	s.log.Info(ctx, "postgres store opened")
	return s, nil
}

// Load returns every stored model.
func (s *PostgresStore) Load(ctx context.Context) (model.Models, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(DriverPostgres, "load", float64(time.Since(start).Milliseconds()))
	}()
	rows, err := s.pool.Query(ctx, `SELECT `+modelColumns+` FROM problem_models`)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()
	out := model.Models{}
	for rows.Next() {
		id, m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		out[id] = m
	}
	return out, rows.Err()
}

// Merge upserts models in one transaction.
func (s *PostgresStore) Merge(ctx context.Context, models model.Models) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(DriverPostgres, "merge", float64(time.Since(start).Milliseconds()))
	}()
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}
	for id, m := range models {
		batch.Queue(`INSERT INTO problem_models (`+modelColumns+`, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
			ON CONFLICT (problem_id) DO UPDATE SET
				slope = EXCLUDED.slope,
				intercept = EXCLUDED.intercept,
				variance = EXCLUDED.variance,
				difficulty = EXCLUDED.difficulty,
				discrimination = EXCLUDED.discrimination,
				irt_loglikelihood = EXCLUDED.irt_loglikelihood,
				irt_users = EXCLUDED.irt_users,
				is_experimental = EXCLUDED.is_experimental,
				updated_at = now()`, modelArgs(id, m)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		metrics.RecordErrorByComponent("store", "write")
		return 0, fmt.Errorf("upsert models: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	metrics.RecordStoreMerge(DriverPostgres)
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreModels(n)
	}
	return len(models), nil
}

// Get returns one model.
func (s *PostgresStore) Get(ctx context.Context, problemID string) (model.ProblemModel, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+modelColumns+` FROM problem_models WHERE problem_id = $1`, problemID)
	_, m, err := scanModel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ProblemModel{}, fmt.Errorf("problem %s: %w", problemID, ErrNotFound)
	}
	if err != nil {
		return model.ProblemModel{}, fmt.Errorf("get %s: %w", problemID, err)
	}
	return m, nil
}

// Count returns the number of stored models.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM problem_models`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return n, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

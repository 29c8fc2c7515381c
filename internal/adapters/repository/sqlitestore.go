package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS problem_models (
	problem_id        TEXT PRIMARY KEY,
	slope             REAL,
	intercept         REAL,
	variance          REAL,
	difficulty        REAL,
	discrimination    REAL,
	irt_loglikelihood REAL,
	irt_users         INTEGER,
	is_experimental   INTEGER NOT NULL DEFAULT 0,
	updated_at        TEXT    NOT NULL
)`

const modelColumns = `problem_id, slope, intercept, variance, difficulty, discrimination,
	irt_loglikelihood, irt_users, is_experimental`

// SQLiteStore keeps one row per problem model in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		path = "problem-models.db"
	}
	cfg := newStoreConfig("sqlite-store", opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	s := &SQLiteStore{db: db, log: cfg.log}
	n, err := s.Count(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	metrics.UpdateStoreModels(n)
	s.log.Info(ctx, "sqlite store opened", logger.String("path", path), logger.Int("models", n))
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(r rowScanner) (string, model.ProblemModel, error) {
	var (
		id string
		m  model.ProblemModel
	)
	err := r.Scan(&id, &m.Slope, &m.Intercept, &m.Variance, &m.Difficulty, &m.Discrimination,
		&m.IRTLogLikelihood, &m.IRTUsers, &m.IsExperimental)
	return id, m, err
}

func modelArgs(id string, m model.ProblemModel) []any {
	return []any{id, m.Slope, m.Intercept, m.Variance, m.Difficulty, m.Discrimination,
		m.IRTLogLikelihood, m.IRTUsers, m.IsExperimental}
}

// Load returns every stored model.
func (s *SQLiteStore) Load(ctx context.Context) (model.Models, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(DriverSQLite, "load", float64(time.Since(start).Milliseconds()))
	}()
	rows, err := s.db.QueryContext(ctx, `SELECT `+modelColumns+` FROM problem_models`)
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
func (s *SQLiteStore) Merge(ctx context.Context, models model.Models) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(DriverSQLite, "merge", float64(time.Since(start).Milliseconds()))
	}()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO problem_models (`+modelColumns+`, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(problem_id) DO UPDATE SET
			slope = excluded.slope,
			intercept = excluded.intercept,
			variance = excluded.variance,
			difficulty = excluded.difficulty,
			discrimination = excluded.discrimination,
			irt_loglikelihood = excluded.irt_loglikelihood,
			irt_users = excluded.irt_users,
			is_experimental = excluded.is_experimental,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for id, m := range models {
		if _, err := stmt.ExecContext(ctx, append(modelArgs(id, m), now)...); err != nil {
			metrics.RecordErrorByComponent("store", "write")
			return 0, fmt.Errorf("upsert %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	metrics.RecordStoreMerge(DriverSQLite)
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreModels(n)
	}
	return len(models), nil
}

// Get returns one model.
func (s *SQLiteStore) Get(ctx context.Context, problemID string) (model.ProblemModel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM problem_models WHERE problem_id = ?`, problemID)
	_, m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProblemModel{}, fmt.Errorf("problem %s: %w", problemID, ErrNotFound)
	}
	if err != nil {
		return model.ProblemModel{}, fmt.Errorf("get %s: %w", problemID, err)
	}
	return m, nil
}

// Count returns the number of stored models.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problem_models`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package repository persists problem models and serves rating rankings.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/ratefit/internal/domain/model"
)

// Drivers accepted by Open.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ModelStore holds the merged problem-model document. Merge is additive:
// models for problems absent from the merged set are left untouched.
type ModelStore interface {
	// Load returns every stored model.
	Load(ctx context.Context) (model.Models, error)
	// Merge upserts models and returns how many were written.
	Merge(ctx context.Context, models model.Models) (int, error)
	// Get returns one model or ErrNotFound.
	Get(ctx context.Context, problemID string) (model.ProblemModel, error)
	// Count returns the number of stored models.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by driver. path is used by the json and
// sqlite drivers, dsn by postgres.
func Open(ctx context.Context, driver, path, dsn string, opts ...Option) (ModelStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverJSON, "":
		return NewJSONStore(path, opts...)
	case DriverSQLite:
		return NewSQLiteStore(ctx, path, opts...)
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
)

// DefaultModelsFile is the document name used when no path is configured.
const DefaultModelsFile = "problem-models.json"

// JSONStore keeps the model document as one JSON object keyed by problem
// id. Writes go to a temporary file that is renamed over the document.
type JSONStore struct {
	mu     sync.RWMutex
	path   string
	models model.Models
	closed bool
	log    logger.Logger
}

// NewJSONStore opens the document at path, creating nothing until the first
// merge. A missing document is an empty store.
func NewJSONStore(path string, opts ...Option) (*JSONStore, error) {
	if path == "" {
		path = DefaultModelsFile
	}
	cfg := newStoreConfig("json-store", opts)
	s := &JSONStore{path: path, log: cfg.log}
	models, err := s.read()
	if err != nil {
		return nil, err
	}
	s.models = models
	metrics.UpdateStoreModels(len(models))
	return s, nil
}

func (s *JSONStore) read() (model.Models, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Models{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	out := model.Models{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return out, nil
}

func (s *JSONStore) write(models model.Models) error {
	raw, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return fmt.Errorf("encode models: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Load returns a copy of every stored model.
func (s *JSONStore) Load(ctx context.Context) (model.Models, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make(model.Models, len(s.models))
	out.Merge(s.models)
	return out, nil
}

// Merge upserts models and rewrites the document.
func (s *JSONStore) Merge(ctx context.Context, models model.Models) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(DriverJSON, "merge", float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	next := make(model.Models, len(s.models)+len(models))
	next.Merge(s.models)
	next.Merge(models)
	if err := s.write(next); err != nil {
		metrics.RecordErrorByComponent("store", "write")
		return 0, err
	}
	s.models = next
	metrics.RecordStoreMerge(DriverJSON)
	metrics.UpdateStoreModels(len(next))
	s.log.Info(ctx, "models merged", logger.String("path", s.path), logger.Int("written", len(models)), logger.Int("total", len(next)))
	return len(models), nil
}

// Get returns one model.
func (s *JSONStore) Get(ctx context.Context, problemID string) (model.ProblemModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.ProblemModel{}, ErrStoreClosed
	}
	m, ok := s.models[problemID]
	if !ok {
		return model.ProblemModel{}, fmt.Errorf("problem %s: %w", problemID, ErrNotFound)
	}
	return m, nil
}

// Count returns the number of stored models.
func (s *JSONStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.models), nil
}

// Path returns the document path.
func (s *JSONStore) Path() string { return s.path }

// Close marks the store closed. The document is always flushed by Merge.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

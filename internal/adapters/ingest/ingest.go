// Package ingest reads contest documents from disk and hands them to the
// estimator validated and in start order.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/pkg/logger"
)

// Loader reads contests from a file or a directory of *.json files.
type Loader struct {
	log logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	ld := &Loader{}
	for _, opt := range opts {
		opt(ld)
	}
	if ld.log == nil {
		ld.log = logger.Get().Named("ingest")
	}
	return ld
}

// Load reads every contest under path, validates them and sorts them by
// start time. A file may hold one contest object or an array of them.
func (ld *Loader) Load(ctx context.Context, path string) ([]contest.Contest, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoInput
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		sort.Strings(files)
	}

	var out []contest.Contest
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := readFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}

	if err := contest.NormalizeAll(out); err != nil {
		return nil, err
	}
	contest.SortByStart(out)
	ld.log.Info(ctx, "contests loaded",
		logger.String("path", path),
		logger.Int("files", len(files)),
		logger.Int("contests", len(out)))
	return out, nil
}

func readFile(path string) ([]contest.Contest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw, path)
}

// Decode parses raw as a contest or an array of contests. source only
// labels errors.
func Decode(raw []byte, source string) ([]contest.Contest, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var many []contest.Contest
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, source, err)
		}
		return many, nil
	}
	var one contest.Contest
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, source, err)
	}
	return []contest.Contest{one}, nil
}

// Save writes contests as one indented JSON array.
func Save(path string, contests []contest.Contest) error {
	raw, err := json.MarshalIndent(contests, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contests: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package worker

import (
	"github.com/okian/ratefit/pkg/logger"
)

// Option applies a configuration option to a FitWorker.
type Option func(*FitWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *FitWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *FitWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the pool logger. Workers derive named children from it.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

package dataset

import (
	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/rating"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithEngine sets the engine that emulates ratings for contests held before
// the official rating system.
func WithEngine(e *rating.Engine) Option {
	return func(b *Builder) {
		if e != nil {
			b.engine = e
		}
	}
}

// WithClassifier sets the problem classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(b *Builder) {
		if c != nil {
			b.classifier = c
		}
	}
}

// WithExisting marks problems that already have a model and must not be
// refit.
func WithExisting(ids []string) Option {
	return func(b *Builder) {
		for _, id := range ids {
			b.existing[id] = struct{}{}
		}
	}
}

// WithRecompute rebuilds contestant histories from scratch: ratings for
// early contests are emulated and later ones use carried-forward official
// ratings with counted participation.
func WithRecompute(on bool) Option {
	return func(b *Builder) {
		b.recompute = on
	}
}

package service

import (
	"github.com/okian/ratefit/internal/adapters/repository"
	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of fit workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the fit job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSolveParallelism bounds concurrent performance solves per contest.
func WithSolveParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.solveParallelism = n
		}
	}
}

// WithOverwrite re-fits problems that already have a stored model.
func WithOverwrite(on bool) Option {
	return func(s *Service) { s.overwrite = on }
}

// WithRecomputeHistory emulates ratings for contests held before the
// rating system.
func WithRecomputeHistory(on bool) Option {
	return func(s *Service) { s.recompute = on }
}

// WithClassifier sets the problem classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithFitter sets the problem fitter.
func WithFitter(f *irt.Fitter) Option {
	return func(s *Service) {
		if f != nil {
			s.fitter = f
		}
	}
}

// WithOldSponsored sets the sponsored contests treated as pre-rating ARCs.
// nil keeps the built-in list.
func WithOldSponsored(ids []string) Option {
	return func(s *Service) {
		if ids != nil {
			s.oldSponsored = ids
		}
	}
}

// WithLeaderboard sets the leaderboard refreshed after each run.
func WithLeaderboard(b *repository.Leaderboard) Option {
	return func(s *Service) {
		if b != nil {
			s.board = b
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

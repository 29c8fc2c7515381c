// Package service runs estimation passes and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ratefit/internal/adapters/ingest"
	"github.com/okian/ratefit/internal/adapters/mq/queue"
	"github.com/okian/ratefit/internal/adapters/mq/worker"
	"github.com/okian/ratefit/internal/adapters/repository"
	"github.com/okian/ratefit/internal/domain/classify"
	"github.com/okian/ratefit/internal/domain/contest"
	"github.com/okian/ratefit/internal/domain/dataset"
	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/internal/domain/rating"
	"github.com/okian/ratefit/internal/domain/types"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
)

// Report summarises one estimation run.
type Report struct {
	RunID       string
	Contests    int
	Skipped     int
	Contestants int
	// Problems is the number of fit jobs; Unsolved lists problems with rows
	// that nobody scored on.
	Problems   int
	Unsolved   []string
	Fitted     int
	Rejections int
	Written    int
	Duration   time.Duration
	Summaries  []dataset.Summary
}

// Service wires ingestion, the rating engine, the dataset builder, the fit
// worker pool and the stores.
type Service struct {
	mu      sync.RWMutex
	running sync.Mutex

	store      repository.ModelStore
	board      *repository.Leaderboard
	classifier *classify.Classifier
	fitter     *irt.Fitter

	workerCount      int
	queueSize        int
	solveParallelism int
	overwrite        bool
	recompute        bool
	oldSponsored     []string

	stats types.Stats

	logger logger.Logger
}

// New constructs a Service persisting models to store.
func New(store repository.ModelStore, opts ...Option) *Service {
	s := &Service{
		store:            store,
		workerCount:      runtime.NumCPU(),
		queueSize:        1024,
		solveParallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.board == nil {
		s.board = repository.NewLeaderboard()
	}
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	if s.fitter == nil {
		s.fitter = irt.NewFitter()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run loads the contests under path and estimates from them.
func (s *Service) Run(ctx context.Context, path string) (Report, error) {
	contests, err := ingest.New(ingest.WithLogger(s.logger.Named("ingest"))).Load(ctx, path)
	if err != nil {
		return Report{}, err
	}
	return s.Estimate(ctx, contests)
}

// Estimate replays contests in start order, fits every problem that gained
// rows and merges the models into the store. Contests must be normalized.
func (s *Service) Estimate(ctx context.Context, contests []contest.Contest) (Report, error) {
	if s.store == nil {
		return Report{}, ErrNoStore
	}
	if !s.running.TryLock() {
		return Report{}, ErrRunActive
	}
	defer s.running.Unlock()

	start := time.Now()
	rep := Report{RunID: uuid.NewString(), Contests: len(contests)}
	log := s.logger.Named("run")
	log.Info(ctx, "estimation started",
		logger.String("run_id", rep.RunID),
		logger.Int("contests", len(contests)),
		logger.Bool("recompute_history", s.recompute),
		logger.Bool("overwrite", s.overwrite))

	var existing []string
	if !s.overwrite {
		stored, err := s.store.Load(ctx)
		if err != nil {
			return rep, fmt.Errorf("load models: %w", err)
		}
		for id := range stored {
			existing = append(existing, id)
		}
	}

	board := rating.New(rating.WithParallelism(s.solveParallelism))
	builder := dataset.New(
		dataset.WithEngine(rating.New(rating.WithParallelism(s.solveParallelism))),
		dataset.WithClassifier(s.classifier),
		dataset.WithExisting(existing),
		dataset.WithRecompute(s.recompute),
	)
	sponsored := contest.SponsoredSet(s.oldSponsored)

	for _, c := range contests {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		t, err := c.ResolveType(sponsored)
		if err != nil {
			return rep, err
		}
		metrics.RecordContestProcessed(t.Kind.String())
		if err := s.rate(ctx, board, c, t); err != nil {
			return rep, err
		}
		sum, err := builder.AddContest(c, t)
		if err != nil {
			return rep, err
		}
		if sum.Skipped != "" {
			rep.Skipped++
			metrics.RecordContestSkipped(sum.Skipped)
			log.Debug(ctx, "contest skipped", logger.String("contest", c.ID), logger.String("reason", sum.Skipped))
		}
		rep.Summaries = append(rep.Summaries, sum)
	}

	jobs, unsolved := builder.Jobs()
	rep.Problems, rep.Unsolved = len(jobs), unsolved
	for range unsolved {
		metrics.RecordProblemUnsolved()
	}

	collector := worker.NewCollector()
	if err := s.fit(ctx, jobs, collector); err != nil {
		return rep, err
	}
	models := collector.Models()
	rep.Fitted, rep.Rejections = len(models), collector.Rejections()

	if len(models) > 0 {
		n, err := s.store.Merge(ctx, models)
		if err != nil {
			return rep, fmt.Errorf("merge models: %w", err)
		}
		rep.Written = n
	}

	ratings := board.Ratings()
	counts := make(map[string]int, len(ratings))
	for id := range ratings {
		counts[id] = board.CompetitionCount(id)
	}
	s.board.Replace(ctx, ratings, counts)
	rep.Contestants = len(ratings)
	metrics.UpdateContestantsRated(len(ratings))

	rep.Duration = time.Since(start)
	metrics.RecordRun(rep.Duration)
	s.record(ctx, rep)

	log.Info(ctx, "estimation finished",
		logger.String("run_id", rep.RunID),
		logger.Int("contestants", rep.Contestants),
		logger.Int("skipped", rep.Skipped),
		logger.Int("fitted", rep.Fitted),
		logger.Int("unsolved", len(rep.Unsolved)),
		logger.Int("rejections", rep.Rejections),
		logger.Duration("duration", rep.Duration))
	return rep, nil
}

// rate feeds one contest to the leaderboard engine.
func (s *Service) rate(ctx context.Context, e *rating.Engine, c contest.Contest, t contest.Type) error {
	if _, ok := contest.TypeOf(t.Kind); !ok {
		return nil
	}
	ranking := dataset.Ranking(c, t)
	if len(ranking) == 0 {
		return nil
	}
	solveStart := time.Now()
	upd, err := e.ProcessContest(c.ID, ranking, t, e.Empty())
	if err != nil {
		return fmt.Errorf("rate contest %s: %w", c.ID, err)
	}
	metrics.RecordSolveLatency(float64(time.Since(solveStart).Microseconds()) / 1000)
	metrics.RecordSolveEvaluations(upd.Evaluations)
	s.logger.Debug(ctx, "contest rated",
		logger.String("contest", c.ID),
		logger.String("kind", t.Kind.String()),
		logger.Int("qualified", upd.Qualified))
	return nil
}

// fit pushes jobs through a bounded queue to the worker pool and waits for
// the pool to drain it. Any job whose model the sink refused fails the
// whole fit.
func (s *Service) fit(ctx context.Context, jobs []dataset.Job, sink worker.Sink) error {
	if len(jobs) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, s.fitter, sink, worker.WithPoolLogger(s.logger.Named("fit")))
	pool.Start(ctx)

	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			cancel()
			if serr := pool.Shutdown(context.WithoutCancel(ctx)); serr != nil {
				s.logger.Warn(ctx, "fit pool shutdown failed", logger.Error(serr))
			}
			return fmt.Errorf("%w %s: %v", ErrEnqueueJob, j.Problem.ID, err)
		}
	}
	if err := q.Close(); err != nil {
		return err
	}
	if err := pool.Wait(ctx); err != nil {
		return fmt.Errorf("fit problems: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, rep Report) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "count models failed", logger.Error(err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = types.Stats{
		RunID:        rep.RunID,
		Contests:     rep.Contests,
		Contestants:  rep.Contestants,
		Models:       n,
		Fitted:       rep.Fitted,
		Rejections:   rep.Rejections,
		LastRunUnix:  time.Now().Unix(),
		LastDuration: rep.Duration.String(),
	}
}

// TopN returns the n best contestants of the last run.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.board.TopN(ctx, n)
}

// Rank returns one contestant's entry.
func (s *Service) Rank(ctx context.Context, contestant string) (types.Entry, error) {
	return s.board.Rank(ctx, contestant)
}

// Models returns the whole stored model document.
func (s *Service) Models(ctx context.Context) (model.Models, error) {
	return s.store.Load(ctx)
}

// Model returns one stored problem model.
func (s *Service) Model(ctx context.Context, problemID string) (model.ProblemModel, error) {
	return s.store.Get(ctx, problemID)
}

// Stats returns the last run's summary with live model and contestant
// counts.
func (s *Service) Stats(ctx context.Context) types.Stats {
	s.mu.RLock()
	stats := s.stats
	s.mu.RUnlock()
	if n, err := s.store.Count(ctx); err == nil {
		stats.Models = n
	}
	stats.Contestants = s.board.Count(ctx)
	return stats
}

// Close releases the store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

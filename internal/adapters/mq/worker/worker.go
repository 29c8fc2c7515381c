// Package worker runs problem fits pulled off the job queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/ratefit/internal/adapters/mq/queue"
	"github.com/okian/ratefit/internal/domain/irt"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Fitter fits one problem.
type Fitter interface {
	Fit(p irt.Problem) irt.Result
}

// Sink receives fitted models.
type Sink interface {
	Accept(ctx context.Context, problemID string, res irt.Result) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// FitWorker pulls jobs until the queue closes or ctx is done.
type FitWorker struct {
	queue  Queue
	fitter Fitter
	sink   Sink
	name   string
	active *activeCounter
	failed *failures

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewFitWorker creates a worker.
func NewFitWorker(q Queue, fitter Fitter, sink Sink, opts ...Option) *FitWorker {
	w := &FitWorker{
		queue:    q,
		fitter:   fitter,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		active:   &activeCounter{},
		failed:   &failures{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is drained, Shutdown is called, or
// ctx is done.
func (w *FitWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "fit job failed", logger.String("problem", j.Problem.ID), logger.Error(err))
				w.failed.add(err)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *FitWorker) Done() <-chan struct{} { return w.done }

// Err joins the errors of every job that failed so far.
func (w *FitWorker) Err() error { return w.failed.err() }

// Shutdown stops the worker and waits for it to return.
func (w *FitWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *FitWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	metrics.UpdateWorkerActiveCount(w.active.add(1))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(w.active.add(-1))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	res := w.fitter.Fit(j.Problem)
	res.Model.IsExperimental = j.Experimental
	metrics.RecordFitLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordProblemFitted()

	for _, r := range res.Rejections {
		metrics.RecordFitRejection(string(r.SubModel), r.Reason())
		w.logger.Info(ctx, "sub-model rejected",
			logger.String("problem", j.Problem.ID),
			logger.String("sub_model", string(r.SubModel)),
			logger.String("reason", r.Reason()),
			logger.Error(r.Err))
	}

	if err := w.sink.Accept(ctx, j.Problem.ID, res); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("store model %s: %w", j.Problem.ID, err)
	}
	w.logger.Debug(ctx, "problem fitted",
		logger.String("problem", j.Problem.ID),
		logger.Int("samples", len(j.Problem.Samples)),
		logger.Bool("experimental", j.Experimental))
	return nil
}

type activeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *activeCounter) add(d int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += d
	return c.n
}

// failures collects job errors across workers.
type failures struct {
	mu   sync.Mutex
	errs []error
}

func (f *failures) add(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *failures) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return errors.Join(f.errs...)
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*FitWorker
	queue   Queue
	failed  *failures
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses one worker
// per CPU.
func NewPool(workerCount int, q Queue, fitter Fitter, sink Sink, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*FitWorker, workerCount),
		queue:   q,
		failed:  &failures{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}

	active := &activeCounter{}
	for i := range p.workers {
		name := "worker-" + strconv.Itoa(i)
		p.workers[i] = NewFitWorker(q, fitter, sink, WithName(name), WithLogger(p.logger.Named(name)))
		p.workers[i].active = active
		p.workers[i].failed = p.failed
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, which happens once the
// queue is closed and drained. It returns the joined errors of every job
// that failed.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.failed.err()
}

// Shutdown closes the queue if it can be closed and stops every worker
// without draining it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package worker runs the per-group analysis off the job queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tiewatch/internal/adapters/mq/queue"
	"github.com/okian/tiewatch/internal/domain/classify"
	"github.com/okian/tiewatch/internal/domain/model"
	"github.com/okian/tiewatch/pkg/logger"
	"github.com/okian/tiewatch/pkg/metrics"
)

const defaultName = "worker"

// Enumerator expands a group into its branches.
type Enumerator interface {
	EnumerateChecked(rec model.GroupRecord) (model.Branches, error)
}

// Saver stores a finished analysis.
type Saver interface {
	Save(ctx context.Context, a model.Analysis) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker analyses groups one at a time until the queue is drained.
type Worker struct {
	queue      Queue
	enumerator Enumerator
	saver      Saver
	name       string
	logger     logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(q Queue, e Enumerator, s Saver, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		enumerator: e,
		saver:      s,
		name:       defaultName,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(defaultName)
	}
	if w.name != defaultName {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run processes jobs until the queue closes. The first failing group stops
// the worker and its error is returned.
func (w *Worker) Run(ctx context.Context) error {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "group analysis failed",
					logger.String("group", string(job.Record.ID())),
					logger.Error(err),
				)
				return err
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()

	a, err := w.analyze(job.Record)
	if err != nil {
		return err
	}
	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordGroupAnalyzed(a.Classification.String(), a.Branches.Len())

	if err := w.saver.Save(ctx, a); err != nil {
		metrics.RecordAnalysisError("save")
		return fmt.Errorf("save group %s: %w", a.Group, err)
	}

	w.logger.Debug(ctx, "group analysed",
		logger.String("group", string(a.Group)),
		logger.String("classification", a.Classification.String()),
		logger.Int("branches", a.Branches.Len()),
		logger.Duration("waited", start.Sub(job.EnqueuedAt)),
	)
	return nil
}

// analyze turns a defect panic from the domain into ErrMalformedInput.
func (w *Worker) analyze(rec model.GroupRecord) (a model.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordAnalysisError("malformed_input")
			err = fmt.Errorf("group %s: %v: %w", rec.ID(), r, model.ErrMalformedInput)
		}
	}()

	branches, err := w.enumerator.EnumerateChecked(rec)
	if err != nil {
		metrics.RecordAnalysisError("enumerate")
		return model.Analysis{}, fmt.Errorf("enumerate group %s: %w", rec.ID(), err)
	}
	return classify.Analyze(rec, branches), nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of count workers. A count below one means one
// worker per CPU. Options apply to every worker.
func NewPool(count int, q Queue, e Enumerator, s Saver, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}

	base := &Worker{}
	for _, opt := range opts {
		opt(base)
	}
	if base.logger == nil {
		base.logger = logger.Get().Named(defaultName)
	}

	p := &Pool{
		workers: make([]*Worker, count),
		logger:  base.logger,
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, e, s,
			append(opts, WithLogger(base.logger), WithName(defaultName+"-"+strconv.Itoa(i)))...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and waits until the queue is drained. The first
// worker error cancels the others and is returned.
func (p *Pool) Run(ctx context.Context) error {
	metrics.UpdateWorkerCount(len(p.workers))
	defer metrics.UpdateWorkerCount(0)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		p.logger.Error(ctx, "worker pool stopped", logger.Error(err))
		return err
	}
	return nil
}

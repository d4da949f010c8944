// Package service wires a results feed through standings, enumeration and
// classification, and keeps the latest analyses for the CLI and HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tiewatch/internal/adapters/feed"
	"github.com/okian/tiewatch/internal/adapters/mq/queue"
	"github.com/okian/tiewatch/internal/adapters/mq/worker"
	"github.com/okian/tiewatch/internal/adapters/repository"
	"github.com/okian/tiewatch/internal/domain/classify"
	"github.com/okian/tiewatch/internal/domain/enumerate"
	"github.com/okian/tiewatch/internal/domain/model"
	"github.com/okian/tiewatch/internal/domain/standings"
	"github.com/okian/tiewatch/pkg/logger"
)

// ErrNoRun is returned by readers before the first successful run.
var ErrNoRun = errors.New("no analysis run has completed")

// RunInfo describes one analysis run.
type RunInfo struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"durationNs"`
	Groups     int           `json:"groups"`
	Error      string        `json:"error,omitempty"`
}

// Report is the result of a successful run.
type Report struct {
	Run      RunInfo
	Analyses []model.Analysis
	Names    classify.NameMap
}

// WriteTo renders every group, each preceded by a blank line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := classify.RenderAll(cw, r.Analyses, r.Names)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Service runs analyses and serves the latest successful one.
type Service struct {
	mu sync.RWMutex

	// Latest successful run
	results *repository.MemoryStore
	names   classify.NameMap
	lastOK  RunInfo
	last    RunInfo
	runs    int

	// Configuration
	workerCount int
	queueSize   int
	maxPending  int

	// Serialises runs
	runMu sync.Mutex

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxPending sets the largest number of pending matches a group may have.
func WithMaxPending(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPending = n
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

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		results:     repository.NewMemoryStore(),
		names:       classify.NameMap{},
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		maxPending:  enumerate.DefaultMaxPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Run fetches every record from src, analyses each group and publishes the
// result. A failed run leaves the previous result in place.
func (s *Service) Run(ctx context.Context, src feed.Source) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	info := RunInfo{ID: uuid.NewString(), Source: src.Name(), StartedAt: time.Now()}
	log := s.logger.With(logger.String("run_id", info.ID), logger.String("source", info.Source))
	log.Info(ctx, "analysis run started")

	results, names, err := s.analyse(ctx, src, log)
	info.FinishedAt = time.Now()
	info.Duration = info.FinishedAt.Sub(info.StartedAt)
	if err != nil {
		info.Error = err.Error()
		s.mu.Lock()
		s.last = info
		s.runs++
		s.mu.Unlock()
		log.Error(ctx, "analysis run failed", logger.Error(err), logger.Duration("took", info.Duration))
		return nil, err
	}
	info.Groups = results.Count(ctx)

	s.mu.Lock()
	s.results = results
	s.names = names
	s.last = info
	s.lastOK = info
	s.runs++
	s.mu.Unlock()

	log.Info(ctx, "analysis run finished",
		logger.Int("groups", info.Groups),
		logger.Duration("took", info.Duration),
	)
	return &Report{Run: info, Analyses: results.List(ctx), Names: names}, nil
}

func (s *Service) analyse(ctx context.Context, src feed.Source, log logger.Logger) (*repository.MemoryStore, classify.NameMap, error) {
	store := standings.NewStore(standings.WithLogger(log.Named("standings")))
	if err := src.Fetch(ctx, store); err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}
	records, err := finalize(ctx, store)
	if err != nil {
		return nil, nil, err
	}
	log.Info(ctx, "records finalized", logger.Int("groups", len(records)))

	results := repository.NewMemoryStore()
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q,
		enumerate.New(enumerate.WithMaxPending(s.maxPending)),
		results,
		worker.WithLogger(log.Named("worker")),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pool.Run(gctx) })
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for _, rec := range records {
			if err := q.Enqueue(gctx, queue.Job{Record: rec}); err != nil {
				return fmt.Errorf("enqueue group %s: %w", rec.ID(), err)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, classify.NameMap(store.Names()), nil
}

// finalizer is the part of the standings store a run freezes.
type finalizer interface {
	FinalizeAll(ctx context.Context) []model.GroupRecord
}

// finalize freezes every group. A defect panic while building records is
// returned as ErrMalformedInput, the same way the worker pool reports one.
func finalize(ctx context.Context, f finalizer) (records []model.GroupRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("finalize: %v: %w", r, model.ErrMalformedInput)
		}
	}()
	return f.FinalizeAll(ctx), nil
}

// Watch runs src immediately and then every interval until ctx ends. Failed
// runs are logged and retried on the next tick.
func (s *Service) Watch(ctx context.Context, src feed.Source, interval time.Duration) {
	if _, err := s.Run(ctx, src); err != nil && ctx.Err() != nil {
		return
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Run(ctx, src)
		}
	}
}

// Analyses returns the latest analyses in natural group order.
func (s *Service) Analyses(ctx context.Context) []model.Analysis {
	return s.store().List(ctx)
}

// Analysis returns the latest analysis of one group.
func (s *Service) Analysis(ctx context.Context, id model.GroupID) (model.Analysis, error) {
	return s.store().Get(ctx, id)
}

// Names returns the display names seen by the latest run.
func (s *Service) Names() classify.NameMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names
}

// WriteReport renders the latest analyses. It returns ErrNoRun before the
// first successful run.
func (s *Service) WriteReport(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	results, names, ok := s.results, s.names, !s.lastOK.StartedAt.IsZero()
	s.mu.RUnlock()
	if !ok {
		return ErrNoRun
	}
	return classify.RenderAll(w, results.List(ctx), names)
}

// LastRun returns the most recent run, successful or not.
func (s *Service) LastRun() (RunInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.runs > 0
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	tally := s.results.Tally(ctx)
	stats := map[string]interface{}{
		"runs":        s.runs,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxPending":  s.maxPending,
		"groups":      s.results.Count(ctx),
		"guaranteed":  tally[model.Guaranteed],
		"possible":    tally[model.Possible],
		"impossible":  tally[model.Impossible],
	}
	if s.runs > 0 {
		stats["lastRun"] = s.last
	}
	if !s.lastOK.StartedAt.IsZero() {
		stats["lastSuccessfulRun"] = s.lastOK
	}
	return stats
}

func (s *Service) store() *repository.MemoryStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Package worker defines the workers that persist and score queued
// submissions.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/adapters/repository"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/ranking"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/logger"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Persister is the slice of the repository workers write through.
type Persister interface {
	UpsertAll(ctx context.Context, assessmentID string, recs []repository.Record) error
	SaveProfile(ctx context.Context, profile types.Profile) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker persists one submission's responses atomically, aggregates and
// ranks them, and stores the resulting profile.
type Worker struct {
	queue  Queue
	store  Persister
	ranker *ranking.Ranker
	name   string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName names the worker for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets the worker logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a worker.
func New(queue Queue, store Persister, ranker *ranking.Ranker, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		store:    store,
		ranker:   ranker,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue drains.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	in := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-in:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.log.Error(ctx, "submission processing failed",
					logger.String("assessmentId", sub.AssessmentID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight submission.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s shutdown timed out: %w", w.name, ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, sub Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	// Persist first: responses are the durable source of truth; the profile
	// is derived and can always be recomputed from them.
	writeStart := time.Now()
	if err := w.store.UpsertAll(ctx, sub.AssessmentID, toRecords(sub.Responses)); err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		return fmt.Errorf("persist submission %s: %w", sub.SubmissionID, err)
	}
	metrics.RecordStoreWriteLatency(float64(time.Since(writeStart).Milliseconds()))

	scoreStart := time.Now()
	scores := scoring.Aggregate(sub.Responses)
	ranked := w.ranker.Rank(scores)
	top := w.ranker.PickTop(ranked)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))

	profile := ranking.BuildProfile(sub.AssessmentID, ranked, top)
	if err := w.store.SaveProfile(ctx, profile); err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		return fmt.Errorf("save profile for %s: %w", sub.AssessmentID, err)
	}

	metrics.RecordProfileComputed()
	w.log.Debug(ctx, "submission scored",
		logger.String("assessmentId", sub.AssessmentID),
		logger.Int("responses", len(sub.Responses)),
		logger.Int("schemas", len(scores)),
	)
	return nil
}

func toRecords(responses []model.Response) []repository.Record {
	recs := make([]repository.Record, len(responses))
	for i, r := range responses {
		recs[i] = repository.Record{
			ItemID:      r.Item.StableID,
			CanonicalID: r.Item.CanonicalID,
			VariableID:  r.Item.VariableID,
			Value:       r.Value,
			TS:          r.TS,
		}
	}
	return recs
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker

	log logger.Logger
}

// NewPool creates workerCount workers sharing one queue and store.
func NewPool(workerCount int, queue Queue, store Persister, ranker *ranking.Ranker) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * 2
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		log:     logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = New(queue, store, ranker, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts down every worker, bounded per worker.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := w.Shutdown(ctx); err != nil {
			p.log.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		}
		cancel()
	}
	metrics.UpdateWorkerCount(0)
}

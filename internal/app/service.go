// Package app wires the assessment engine together: instrument registry,
// payload normalization, submission dedupe, the ingestion queue with its
// worker pool, the response store and the export builder.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/adapters/mq/queue"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/adapters/mq/worker"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/adapters/repository"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/dedupe"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/normalize"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/ranking"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/export"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/logger"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/metrics"
)

// Service orchestrates the full submission lifecycle: intake, normalization,
// asynchronous scoring and persistence, and profile/export reads.
type Service struct {
	mu      sync.RWMutex
	started bool

	reg        *registry.Registry
	normalizer *normalize.Normalizer
	ranker     *ranking.Ranker
	builder    *export.Builder
	tracker    dedupe.Tracker
	queue      queue.Queue
	pool       *worker.Pool
	store      repository.Store

	form              registry.Form
	workerCount       int
	queueSize         int
	dedupeSize        int
	emergingThreshold float64
	strict            bool

	log logger.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its workers.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithStore injects the response store. Defaults to the in-memory store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithForm selects the instrument form served by this instance.
func WithForm(f registry.Form) Option {
	return func(s *Service) {
		s.form = f
	}
}

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize sets the submission queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the submission-token dedupe window.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithEmergingThreshold overrides the emerging-schema cutoff.
func WithEmergingThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.emergingThreshold = t
		}
	}
}

// WithStrictSubmissions toggles rejection of submissions that normalize
// with errors. When false, partial submissions are accepted and scored
// over whatever responses resolved.
func WithStrictSubmissions(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// New creates a service with the given options applied.
func New(opts ...Option) *Service {
	s := &Service{
		form:              registry.FormFull,
		workerCount:       runtime.NumCPU() * 2,
		queueSize:         10_000,
		dedupeSize:        50_000,
		emergingThreshold: ranking.DefaultEmergingThreshold,
		strict:            true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("app")
	}
	return s
}

// Start loads the instrument mapping and brings up the queue and worker
// pool. It must be called before any other operation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	reg, err := registry.New(registry.WithForm(s.form))
	if err != nil {
		return fmt.Errorf("load instrument: %w", err)
	}
	s.reg = reg
	s.normalizer = normalize.New(reg, normalize.WithLogger(s.log.Named("normalize")))
	s.ranker = ranking.New(ranking.WithEmergingThreshold(s.emergingThreshold))
	s.builder = export.NewBuilder(reg)
	s.tracker = dedupe.NewTracker(dedupe.WithMaxSize(s.dedupeSize))
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.ranker)
	s.pool.Start(ctx)

	s.started = true
	s.log.Info(ctx, "service started",
		logger.String("form", string(s.form)),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.String("mapping_version", reg.Version()),
	)
	return nil
}

// Stop drains the worker pool and closes the queue.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.pool.Stop()
	s.queue.Close()
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.log.Warn(ctx, "store close", logger.Error(err))
		}
	}
	s.started = false
	s.log.Info(ctx, "service stopped")
}

// Registry exposes the loaded instrument registry.
func (s *Service) Registry() *registry.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg
}

// StrictSubmissions reports whether invalid submissions are rejected.
func (s *Service) StrictSubmissions() bool {
	return s.strict
}

// SeenAndRecord marks a submission token as seen, returning true when the
// token was already present in the dedupe window.
func (s *Service) SeenAndRecord(ctx context.Context, token string) bool {
	seen := s.tracker.SeenAndRecord(ctx, token)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission token from the dedupe window so a rejected
// submission can be retried.
func (s *Service) Unrecord(ctx context.Context, token string) {
	s.tracker.Unrecord(ctx, token)
}

// Normalize parses and normalizes a raw payload against the loaded
// instrument. Parse failures surface as a failed result rather than an
// error so callers report them uniformly.
func (s *Service) Normalize(ctx context.Context, raw []byte) normalize.Result {
	metrics.RecordSubmissionReceived()
	payload, err := normalize.ParsePayload(raw)
	if err != nil {
		metrics.RecordNormalizationError("payload")
		return normalize.Result{Errors: []string{err.Error()}}
	}
	res := s.normalizer.Normalize(ctx, payload)
	if res.Mode == normalize.ModeLegacy {
		metrics.RecordLegacyPayload()
	}
	return res
}

// Enqueue hands a normalized submission to the scoring workers. It returns
// false when the queue is full.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now().UTC()
	}
	if !s.queue.Enqueue(ctx, sub) {
		s.log.Warn(ctx, "enqueue rejected",
			logger.String("assessment_id", sub.AssessmentID),
			logger.Int("queue_len", s.queue.Len(ctx)),
		)
		return false
	}
	return true
}

// Scores recomputes per-schema scores from the stored responses of an
// assessment, in instrument display order.
func (s *Service) Scores(ctx context.Context, assessmentID string) ([]scoring.SchemaScore, error) {
	responses, err := s.storedResponses(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return scoring.Aggregate(responses), nil
}

// Profile returns the persisted persona profile for an assessment, falling
// back to recomputing it from stored responses when no profile has been
// saved yet.
func (s *Service) Profile(ctx context.Context, assessmentID string) (types.Profile, error) {
	profile, err := s.store.Profile(ctx, assessmentID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return types.Profile{}, err
	}

	responses, err := s.storedResponses(ctx, assessmentID)
	if err != nil {
		return types.Profile{}, err
	}
	ranked := s.ranker.Rank(scoring.Aggregate(responses))
	top := s.ranker.PickTop(ranked)
	return ranking.BuildProfile(assessmentID, ranked, top), nil
}

// Export assembles a validated export document for an assessment.
func (s *Service) Export(ctx context.Context, assessmentID string, participant model.Participant) (export.Document, error) {
	responses, err := s.storedResponses(ctx, assessmentID)
	if err != nil {
		return export.Document{}, err
	}
	if participant.AssessmentID == "" {
		participant.AssessmentID = assessmentID
	}
	if participant.CompletedAt.IsZero() {
		participant.CompletedAt = latestTimestamp(responses)
	}
	ranked := s.ranker.Rank(scoring.Aggregate(responses))
	return s.builder.Build(participant, ranked, responses)
}

// GetStats reports queue and dedupe occupancy for the stats endpoint.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	count := s.store.Count(ctx)
	metrics.UpdateTotalAssessments(count)
	return map[string]any{
		"assessments":     count,
		"queue_len":       s.queue.Len(ctx),
		"queue_cap":       s.queueSize,
		"dedupe_window":   s.tracker.Size(),
		"worker_count":    s.workerCount,
		"mapping_version": s.reg.Version(),
		"form":            string(s.form),
	}
}

// storedResponses loads an assessment's responses and resolves them back
// into instrument items. Records that no longer resolve indicate a mapping
// regression and fail the read.
func (s *Service) storedResponses(ctx context.Context, assessmentID string) ([]model.Response, error) {
	records, err := s.store.ResponsesFor(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	responses := make([]model.Response, 0, len(records))
	for _, rec := range records {
		item, ok := s.reg.ResolveCanonicalID(rec.CanonicalID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, rec.CanonicalID)
		}
		responses = append(responses, model.Response{Item: item, Value: rec.Value, TS: rec.TS})
	}
	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].Item.DisplayOrder < responses[j].Item.DisplayOrder
	})
	return responses, nil
}

func latestTimestamp(responses []model.Response) time.Time {
	var latest time.Time
	for _, r := range responses {
		if r.TS.After(latest) {
			latest = r.TS
		}
	}
	if latest.IsZero() {
		latest = time.Now().UTC()
	}
	return latest
}

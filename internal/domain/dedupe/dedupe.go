// Package dedupe tracks submission tokens for at-most-once intake.
package dedupe

import (
	"context"
	"sync"
)

// Default capacity of the token window.
const defaultMaxSize = 50000

// Tracker records seen submission tokens so retried HTTP submissions are
// acknowledged as duplicates instead of being scored twice.
type Tracker interface {
	// SeenAndRecord atomically checks whether token was seen and records it
	// if not. Returns true when the token was already seen.
	SeenAndRecord(ctx context.Context, token string) bool

	// Unrecord forgets a token so the submission can be retried. Used when a
	// recorded submission failed to enqueue (backpressure).
	Unrecord(ctx context.Context, token string)

	// Size returns the number of tokens currently tracked.
	Size() int64
}

// Option applies a configuration option to the tracker.
type Option func(*windowTracker)

// WithMaxSize bounds the token window. Zero or negative means unbounded.
func WithMaxSize(size int) Option {
	return func(t *windowTracker) {
		t.maxSize = size
	}
}

// windowTracker keeps tokens in a FIFO window: when the window is full the
// oldest token is forgotten first.
type windowTracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	fifo    []string // insertion order, oldest first; may hold forgotten tokens
	maxSize int
}

// NewTracker creates an in-memory tracker.
func NewTracker(opts ...Option) Tracker {
	t := &windowTracker{
		seen:    make(map[string]struct{}),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *windowTracker) SeenAndRecord(_ context.Context, token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[token]; ok {
		return true
	}

	if t.maxSize > 0 && len(t.seen) >= t.maxSize {
		t.evictOldest()
	}

	t.seen[token] = struct{}{}
	t.fifo = append(t.fifo, token)
	return false
}

func (t *windowTracker) Unrecord(_ context.Context, token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// The fifo slice keeps the stale entry; evictOldest skips tokens that
	// are no longer in the map.
	delete(t.seen, token)
}

func (t *windowTracker) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.seen))
}

// evictOldest drops the oldest still-tracked token. Must be called with
// t.mu held.
func (t *windowTracker) evictOldest() {
	for len(t.fifo) > 0 {
		oldest := t.fifo[0]
		t.fifo = t.fifo[1:]
		if _, ok := t.seen[oldest]; ok {
			delete(t.seen, oldest)
			return
		}
	}
}

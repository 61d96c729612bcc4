// Package model contains domain models passed between layers.
package model

import "time"

// Likert answer bounds for every instrument item.
const (
	MinValue = 1
	MaxValue = 6
)

// Item is one survey question from the versioned instrument mapping.
// Items are immutable once loaded; identity is StableID or CanonicalID,
// never DisplayOrder.
type Item struct {
	StableID     string // opaque, globally unique
	CanonicalID  string // "domain.schema.question", e.g. "2.4.3"
	VariableID   string // "domain.schema", always CanonicalID minus the last segment
	Schema       string // schema label, e.g. "Failure"
	Domain       string // one of the five top-level domains
	DisplayOrder int    // 1-based UI position, display only
}

// Response is one respondent's validated answer to one item.
type Response struct {
	Item  Item
	Value int // MinValue..MaxValue inclusive
	TS    time.Time
}

// Submission carries one assessment's normalized responses through the queue.
type Submission struct {
	SubmissionID string // unique id for idempotency
	AssessmentID string
	Responses    []Response
	ReceivedAt   time.Time
}

// Participant is the respondent identity block attached to exports.
type Participant struct {
	Name         string
	Email        string
	AssessmentID string
	CompletedAt  time.Time
}

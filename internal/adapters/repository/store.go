// Package repository defines the response persistence interface and its
// in-memory and SQLite implementations.
package repository

import (
	"context"
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
)

// Record is one persisted per-item response. Rows are keyed by
// (assessment id, item id): resubmitting an assessment upserts, it never
// duplicates.
type Record struct {
	ItemID      string
	CanonicalID string
	VariableID  string
	Value       int
	TS          time.Time
}

// Store provides read/write access to per-assessment responses and their
// computed profiles.
type Store interface {
	// UpsertResponse writes one response, idempotent on (assessmentID, ItemID).
	UpsertResponse(ctx context.Context, assessmentID string, rec Record) error

	// UpsertAll applies one submission's responses as a single unit: either
	// every record is written or none is.
	UpsertAll(ctx context.Context, assessmentID string, recs []Record) error

	// ResponsesFor returns all stored responses for an assessment.
	// Returns ErrNotFound when nothing was ever stored for the id.
	ResponsesFor(ctx context.Context, assessmentID string) ([]Record, error)

	// SaveProfile stores the computed persona profile for an assessment,
	// replacing any previous one.
	SaveProfile(ctx context.Context, profile types.Profile) error

	// Profile returns the stored profile for an assessment.
	// Returns ErrNotFound when no profile has been computed yet.
	Profile(ctx context.Context, assessmentID string) (types.Profile, error)

	// Count returns the number of assessments with stored responses.
	Count(ctx context.Context) int
}

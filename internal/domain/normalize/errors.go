package normalize

import "errors"

// Sentinel kinds for per-entry and batch-level normalization errors.
// Per-entry kinds are collected into Result.Errors, never returned early;
// a fully invalid submission still yields a complete error report.
var (
	ErrInvalidPayload       = errors.New("invalid payload")
	ErrInvalidValue         = errors.New("invalid value")
	ErrUnresolvedIdentifier = errors.New("unresolved identifier")
	ErrDuplicateResponse    = errors.New("duplicate response")
	ErrIncompleteSubmission = errors.New("incomplete submission")
)

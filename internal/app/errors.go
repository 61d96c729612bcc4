package app

import "errors"

var (
	// ErrNotStarted is returned when an operation is invoked before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrUnknownItem is returned when a stored response no longer resolves
	// against the loaded instrument mapping.
	ErrUnknownItem = errors.New("unknown item identifier")
)

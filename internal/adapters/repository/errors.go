package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound = errors.New("assessment not found")
	ErrStore    = errors.New("store operation failed")
)

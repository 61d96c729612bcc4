package registry

import "errors"

// Sentinel kinds for mapping errors. Both are fatal: nothing can be scored
// until the instrument definition is fixed.
var (
	ErrMappingLoad      = errors.New("mapping load failed")
	ErrMappingIntegrity = errors.New("mapping integrity violation")
)

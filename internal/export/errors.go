package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrExportValidation = errors.New("export validation failed")
	ErrUnknownVersion   = errors.New("unknown export schema version")
)

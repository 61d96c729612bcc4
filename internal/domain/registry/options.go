// Package registry loads and exposes the versioned item mapping.
package registry

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithForm selects the instrument form (full or short) the registry serves.
func WithForm(form Form) Option {
	return func(r *Registry) {
		if form == FormFull || form == FormShort {
			r.form = form
		}
	}
}

// WithSource overrides the embedded instrument definition. Used by tests to
// exercise malformed or conflicting mappings.
func WithSource(src []byte) Option {
	return func(r *Registry) {
		if len(src) > 0 {
			r.source = src
		}
	}
}

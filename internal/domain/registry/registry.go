// Package registry loads and exposes the versioned item mapping.
//
// The mapping is seeded from a static instrument definition and is immutable
// for the lifetime of the process. A Registry is explicitly constructed and
// handed to the normalizer and aggregator; there is no package-level state.
package registry

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
)

// Form identifies which instrument variant is active.
type Form string

// Supported instrument forms.
const (
	FormFull  Form = "full"  // 108 items, six per schema
	FormShort Form = "short" // 54 items, questions 1..3 of each schema
)

// Item counts per form.
const (
	fullTotal       = 108
	shortQuestions  = 3
	canonicalFields = 3
)

//go:embed instrument.yaml
var embeddedInstrument []byte

type seedItem struct {
	StableID     string `yaml:"stable_id"`
	CanonicalID  string `yaml:"canonical_id"`
	VariableID   string `yaml:"variable_id"`
	Schema       string `yaml:"schema"`
	Domain       string `yaml:"domain"`
	DisplayOrder int    `yaml:"display_order"`
}

type seedFile struct {
	Version string     `yaml:"version"`
	Items   []seedItem `yaml:"items"`
}

// Registry is the read-only item mapping. Safe for concurrent readers.
type Registry struct {
	form   Form
	source []byte

	version      string
	items        []model.Item
	byStable     map[string]model.Item
	byCanonical  map[string]model.Item
	byDisplay    map[int]model.Item
	schemaLabels []string
}

// New loads the instrument definition and builds the lookup tables.
// It fails with ErrMappingLoad when the source is malformed or the entry
// count does not match the full instrument, and with ErrMappingIntegrity on
// duplicate ids or a variable id that disagrees with its canonical id.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		form:   FormFull,
		source: embeddedInstrument,
	}
	for _, opt := range opts {
		opt(r)
	}

	var seed seedFile
	if err := yaml.Unmarshal(r.source, &seed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMappingLoad, err)
	}
	if seed.Version == "" {
		return nil, fmt.Errorf("%w: missing mapping version", ErrMappingLoad)
	}
	if len(seed.Items) != fullTotal {
		return nil, fmt.Errorf("%w: expected %d items, found %d", ErrMappingLoad, fullTotal, len(seed.Items))
	}
	r.version = seed.Version

	r.byStable = make(map[string]model.Item, len(seed.Items))
	r.byCanonical = make(map[string]model.Item, len(seed.Items))
	r.byDisplay = make(map[int]model.Item, len(seed.Items))
	seenSchemas := make(map[string]bool)

	for _, s := range seed.Items {
		item, err := buildItem(s)
		if err != nil {
			return nil, err
		}

		// The short form keeps the first questions of each schema only.
		if r.form == FormShort {
			q, _ := questionIndex(item.CanonicalID)
			if q > shortQuestions {
				continue
			}
		}

		if _, dup := r.byStable[item.StableID]; dup {
			return nil, fmt.Errorf("%w: duplicate stable id %q", ErrMappingIntegrity, item.StableID)
		}
		if _, dup := r.byCanonical[item.CanonicalID]; dup {
			return nil, fmt.Errorf("%w: duplicate canonical id %q", ErrMappingIntegrity, item.CanonicalID)
		}
		if _, dup := r.byDisplay[item.DisplayOrder]; dup {
			return nil, fmt.Errorf("%w: duplicate display order %d", ErrMappingIntegrity, item.DisplayOrder)
		}

		r.byStable[item.StableID] = item
		r.byCanonical[item.CanonicalID] = item
		r.byDisplay[item.DisplayOrder] = item
		r.items = append(r.items, item)
		if !seenSchemas[item.Schema] {
			seenSchemas[item.Schema] = true
			r.schemaLabels = append(r.schemaLabels, item.Schema)
		}
	}

	return r, nil
}

// buildItem validates one seed entry and converts it to the domain item.
func buildItem(s seedItem) (model.Item, error) {
	if s.StableID == "" || s.CanonicalID == "" || s.Schema == "" || s.Domain == "" {
		return model.Item{}, fmt.Errorf("%w: incomplete entry %q", ErrMappingLoad, s.CanonicalID)
	}
	segments := strings.Split(s.CanonicalID, ".")
	if len(segments) != canonicalFields {
		return model.Item{}, fmt.Errorf("%w: canonical id %q is not domain.schema.question", ErrMappingLoad, s.CanonicalID)
	}
	for _, seg := range segments {
		if _, err := strconv.Atoi(seg); err != nil {
			return model.Item{}, fmt.Errorf("%w: canonical id %q has non-numeric segment %q", ErrMappingLoad, s.CanonicalID, seg)
		}
	}
	derived := segments[0] + "." + segments[1]
	if s.VariableID != derived {
		return model.Item{}, fmt.Errorf("%w: variable id %q disagrees with canonical id %q", ErrMappingIntegrity, s.VariableID, s.CanonicalID)
	}
	if s.DisplayOrder < 1 {
		return model.Item{}, fmt.Errorf("%w: display order %d for %q", ErrMappingLoad, s.DisplayOrder, s.CanonicalID)
	}
	return model.Item{
		StableID:     s.StableID,
		CanonicalID:  s.CanonicalID,
		VariableID:   derived,
		Schema:       s.Schema,
		Domain:       s.Domain,
		DisplayOrder: s.DisplayOrder,
	}, nil
}

// questionIndex returns the third canonical segment.
func questionIndex(canonicalID string) (int, bool) {
	segments := strings.Split(canonicalID, ".")
	if len(segments) != canonicalFields {
		return 0, false
	}
	q, err := strconv.Atoi(segments[canonicalFields-1])
	if err != nil {
		return 0, false
	}
	return q, true
}

// ResolveAnyID resolves an item by stable id, canonical id, or a legacy bare
// numeric key (historical payloads carried the display position).
func (r *Registry) ResolveAnyID(id string) (model.Item, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Item{}, false
	}
	if item, ok := r.byStable[id]; ok {
		return item, ok
	}
	if item, ok := r.byCanonical[id]; ok {
		return item, ok
	}
	if n, err := strconv.Atoi(id); err == nil {
		item, ok := r.byDisplay[n]
		return item, ok
	}
	return model.Item{}, false
}

// ResolveStableID resolves an item by its opaque id only.
func (r *Registry) ResolveStableID(id string) (model.Item, bool) {
	item, ok := r.byStable[strings.TrimSpace(id)]
	return item, ok
}

// ResolveCanonicalID resolves an item by its "domain.schema.question" id only.
func (r *Registry) ResolveCanonicalID(id string) (model.Item, bool) {
	item, ok := r.byCanonical[strings.TrimSpace(id)]
	return item, ok
}

// Items returns all items of the active form in display order.
func (r *Registry) Items() []model.Item {
	out := make([]model.Item, len(r.items))
	copy(out, r.items)
	return out
}

// Version returns the mapping version marker, e.g. "1.0.1".
func (r *Registry) Version() string {
	return r.version
}

// Form returns the active instrument form.
func (r *Registry) Form() Form {
	return r.form
}

// ExpectedTotal returns the number of responses a complete submission must
// carry for the active form.
func (r *Registry) ExpectedTotal() int {
	return len(r.items)
}

// SchemaLabels returns the distinct schema labels in instrument order.
func (r *Registry) SchemaLabels() []string {
	out := make([]string, len(r.schemaLabels))
	copy(out, r.schemaLabels)
	return out
}

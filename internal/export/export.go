// Package export renders scoring results into a stable, versioned, machine
// validated export document.
//
// Two historical export paths (the plain JSON export and the "surgical"
// v1.3.0 export) are consolidated here behind one builder and one validator;
// the validator still accepts the older schema version so archived documents
// remain re-importable. Version values are append-only: a value is never
// reused for a changed shape.
package export

import (
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/ranking"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
)

// Version tags carried by every export.
const (
	// SchemaVersion is the current document shape version.
	SchemaVersion = "1.3.0"
	// LegacySchemaVersion is the retired plain-JSON shape, still accepted
	// by Validate for re-import.
	LegacySchemaVersion = "1.0.0"
	// AnalysisVersion identifies the scoring semantics that produced the
	// numbers in the document.
	AnalysisVersion = "2.1.0"
)

// ResponseRecord is one per-item response in the document. The four field
// names are a frozen wire contract; downstream tooling depends on them.
// DisplayIndex is the 1-based UI order, deliberately decoupled from array
// position so consumers never infer order from position.
type ResponseRecord struct {
	ItemID       string `json:"itemId"`
	CanonicalID  string `json:"canonicalId"`
	Value        int    `json:"value"`
	DisplayIndex int    `json:"displayIndex"`
}

// PersonaRecord is one ranked persona in the document.
type PersonaRecord struct {
	Rank     int     `json:"rank"`
	Schema   string  `json:"schema"`
	Index    float64 `json:"index"`
	Emerging bool    `json:"emerging"`
}

// ParticipantBlock is the respondent identity block.
type ParticipantBlock struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	AssessmentID string    `json:"assessmentId"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Document is the versioned export of one scored assessment.
type Document struct {
	SchemaVersion   string           `json:"schemaVersion"`
	AnalysisVersion string           `json:"analysisVersion"`
	MappingVersion  string           `json:"mappingVersion"`
	InstrumentForm  string           `json:"instrumentForm"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Participant     ParticipantBlock `json:"participant"`
	Personas        []PersonaRecord  `json:"personas"`
	Responses       []ResponseRecord `json:"responses"`
}

// Builder renders documents for one registry's instrument version.
type Builder struct {
	reg *registry.Registry
	now func() time.Time
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClock overrides the generation timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder bound to an item registry.
func NewBuilder(reg *registry.Registry, opts ...Option) *Builder {
	b := &Builder{reg: reg, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders the ranked results and raw responses into a current-version
// document and validates it before returning.
func (b *Builder) Build(participant model.Participant, ranked []ranking.RankedPersona, responses []model.Response) (Document, error) {
	doc := Document{
		SchemaVersion:   SchemaVersion,
		AnalysisVersion: AnalysisVersion,
		MappingVersion:  b.reg.Version(),
		InstrumentForm:  string(b.reg.Form()),
		GeneratedAt:     b.now().UTC(),
		Participant: ParticipantBlock{
			Name:         participant.Name,
			Email:        participant.Email,
			AssessmentID: participant.AssessmentID,
			CompletedAt:  participant.CompletedAt,
		},
	}

	doc.Personas = make([]PersonaRecord, 0, len(ranked))
	for _, p := range ranked {
		doc.Personas = append(doc.Personas, PersonaRecord{
			Rank:     p.Rank,
			Schema:   p.Schema,
			Index:    p.Index,
			Emerging: p.Emerging,
		})
	}

	doc.Responses = make([]ResponseRecord, 0, len(responses))
	for _, r := range responses {
		doc.Responses = append(doc.Responses, ResponseRecord{
			ItemID:       r.Item.StableID,
			CanonicalID:  r.Item.CanonicalID,
			Value:        r.Value,
			DisplayIndex: r.Item.DisplayOrder,
		})
	}

	if res := b.Validate(doc); !res.OK {
		return Document{}, res.Err()
	}
	return doc, nil
}

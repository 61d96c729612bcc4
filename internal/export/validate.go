package export

import (
	"fmt"
	"strings"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
)

// Issue is one structured validation finding: which field failed and why.
// Structured detail supports programmatic repair, not just display.
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationResult accumulates every issue found in a document.
type ValidationResult struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

// Err converts a failed result into an error wrapping ErrExportValidation.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	parts := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		parts = append(parts, is.Field+": "+is.Reason)
	}
	return fmt.Errorf("%w: %s", ErrExportValidation, strings.Join(parts, "; "))
}

// expectedCounts maps instrument forms to the response totals a complete
// current-version document must carry.
var expectedCounts = map[string]int{
	string(registry.FormFull):  108,
	string(registry.FormShort): 54,
}

// Validate checks a document's structure: required fields, response count
// for the instrument form in effect, value ranges, and duplicate item ids.
// Every issue is collected; validation never stops at the first finding.
//
// Documents carrying LegacySchemaVersion predate completeness enforcement,
// so for them the count rule relaxes to "at least one response".
func (b *Builder) Validate(doc Document) ValidationResult {
	var issues []Issue
	add := func(field, reason string) {
		issues = append(issues, Issue{Field: field, Reason: reason})
	}

	legacy := false
	switch doc.SchemaVersion {
	case SchemaVersion:
	case LegacySchemaVersion:
		legacy = true
	case "":
		add("schemaVersion", "required")
	default:
		add("schemaVersion", fmt.Sprintf("%v: %q", ErrUnknownVersion, doc.SchemaVersion))
	}

	if doc.AnalysisVersion == "" {
		add("analysisVersion", "required")
	}
	if doc.Participant.Name == "" {
		add("participant.name", "required")
	}
	if doc.Participant.Email == "" {
		add("participant.email", "required")
	}
	if doc.Participant.AssessmentID == "" {
		add("participant.assessmentId", "required")
	}
	if doc.Participant.CompletedAt.IsZero() {
		add("participant.completedAt", "required")
	}

	expected, formKnown := expectedCounts[doc.InstrumentForm]
	if !formKnown {
		add("instrumentForm", fmt.Sprintf("unknown form %q", doc.InstrumentForm))
	}

	switch {
	case legacy:
		if len(doc.Responses) == 0 {
			add("responses", "legacy document carries no responses")
		}
	case formKnown && len(doc.Responses) != expected:
		add("responses", fmt.Sprintf("expected %d responses for %s form, found %d", expected, doc.InstrumentForm, len(doc.Responses)))
	}

	seenItem := make(map[string]int, len(doc.Responses))
	seenCanonical := make(map[string]int, len(doc.Responses))
	for i, r := range doc.Responses {
		field := fmt.Sprintf("responses[%d]", i)
		if r.ItemID == "" {
			add(field+".itemId", "required")
		} else if first, dup := seenItem[r.ItemID]; dup {
			add(field+".itemId", fmt.Sprintf("duplicate of responses[%d]", first))
		} else {
			seenItem[r.ItemID] = i
		}
		if r.CanonicalID == "" {
			add(field+".canonicalId", "required")
		} else if first, dup := seenCanonical[r.CanonicalID]; dup {
			add(field+".canonicalId", fmt.Sprintf("duplicate of responses[%d]", first))
		} else {
			seenCanonical[r.CanonicalID] = i
		}
		if r.Value < model.MinValue || r.Value > model.MaxValue {
			add(field+".value", fmt.Sprintf("value %d outside range %d..%d", r.Value, model.MinValue, model.MaxValue))
		}
		if r.DisplayIndex < 1 {
			add(field+".displayIndex", "must be 1-based")
		}
	}

	for i, p := range doc.Personas {
		if p.Rank != i+1 {
			add(fmt.Sprintf("personas[%d].rank", i), fmt.Sprintf("expected rank %d, found %d", i+1, p.Rank))
		}
	}

	return ValidationResult{OK: len(issues) == 0, Issues: issues}
}

// Package ranking orders schema scores into primary/secondary/tertiary
// persona assignments.
package ranking

import (
	"sort"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
)

// DefaultEmergingThreshold marks secondary/tertiary personas whose index
// falls below it as emerging.
const DefaultEmergingThreshold = 60.0

// RankedPersona is a schema's position in the ordered results.
type RankedPersona struct {
	Rank     int
	Schema   string
	Index    float64 // unrounded; rounding is a display concern
	Emerging bool
}

// TopPersonas holds the top-3 selection. Missing slots are nil, never
// zero-filled placeholders.
type TopPersonas struct {
	Primary   *RankedPersona
	Secondary *RankedPersona
	Tertiary  *RankedPersona
}

// Ranker applies the ordering and threshold policy.
type Ranker struct {
	emergingThreshold float64
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithEmergingThreshold overrides the default emerging cutoff.
func WithEmergingThreshold(threshold float64) Option {
	return func(r *Ranker) {
		if threshold > 0 {
			r.emergingThreshold = threshold
		}
	}
}

// New creates a Ranker with the default threshold.
func New(opts ...Option) *Ranker {
	r := &Ranker{emergingThreshold: DefaultEmergingThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank orders scores descending by unrounded index and assigns 1-based
// ranks. Equal indexes keep their input order: the sort is stable by
// contract, not by accident, so callers may rely on it.
func (r *Ranker) Rank(scores []scoring.SchemaScore) []RankedPersona {
	ranked := make([]RankedPersona, len(scores))
	for i, s := range scores {
		ranked[i] = RankedPersona{Schema: s.Schema, Index: s.Index}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Index > ranked[j].Index
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PickTop selects the primary, secondary and tertiary personas. Ranks 2 and
// 3 are flagged emerging when their index is below the threshold; rank 1 is
// never emerging regardless of value.
func (r *Ranker) PickTop(ranked []RankedPersona) TopPersonas {
	var top TopPersonas
	if len(ranked) > 0 {
		top.Primary = clone(ranked[0], false)
	}
	if len(ranked) > 1 {
		top.Secondary = clone(ranked[1], ranked[1].Index < r.emergingThreshold)
	}
	if len(ranked) > 2 {
		top.Tertiary = clone(ranked[2], ranked[2].Index < r.emergingThreshold)
	}
	return top
}

func clone(p RankedPersona, emerging bool) *RankedPersona {
	p.Emerging = emerging
	return &p
}

// Package scoring computes per-schema activation indexes from validated
// response lists.
package scoring

import (
	"math"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
)

// Index rescale constants: a 1..6 mean maps linearly onto 0..100.
const (
	indexFloor = 1.0
	indexSpan  = 5.0
	maxIndex   = 100.0
)

// SchemaScore aggregates every response belonging to one schema.
type SchemaScore struct {
	Schema    string  `json:"schema"`
	Domain    string  `json:"domain"`
	RawMean   float64 `json:"rawMean"`   // unrounded arithmetic mean of the 1..6 values
	Index     float64 `json:"index"`     // ((RawMean-1)/5)*100, clamped to [0,100]
	ItemCount int     `json:"itemCount"` // responses actually contributing
}

// Aggregate computes one SchemaScore per distinct schema present in the
// input. Schemas with zero responses are omitted, not zero-filled. Output
// order is the first-appearance order of each schema in the input, which the
// ranker's tie-break preserves.
//
// The computation is pure: identical inputs always produce identical output.
func Aggregate(responses []model.Response) []SchemaScore {
	type bucket struct {
		domain string
		sum    int
		count  int
	}

	order := make([]string, 0, len(responses))
	buckets := make(map[string]*bucket, len(responses))

	for _, r := range responses {
		b, ok := buckets[r.Item.Schema]
		if !ok {
			b = &bucket{domain: r.Item.Domain}
			buckets[r.Item.Schema] = b
			order = append(order, r.Item.Schema)
		}
		b.sum += r.Value
		b.count++
	}

	scores := make([]SchemaScore, 0, len(order))
	for _, schema := range order {
		b := buckets[schema]
		mean := float64(b.sum) / float64(b.count)
		scores = append(scores, SchemaScore{
			Schema:    schema,
			Domain:    b.domain,
			RawMean:   mean,
			Index:     IndexFromMean(mean),
			ItemCount: b.count,
		})
	}
	return scores
}

// IndexFromMean rescales a 1..6 mean onto 0..100. Inputs are already
// range-checked upstream; the clamp is kept anyway.
func IndexFromMean(mean float64) float64 {
	idx := (mean - indexFloor) / indexSpan * maxIndex
	return math.Max(0, math.Min(maxIndex, idx))
}

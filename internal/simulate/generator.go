// Package simulate generates synthetic assessment submissions and drives
// them through a running engine over HTTP.
package simulate

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
)

// Responder archetypes shape the value distribution so ranked profiles
// come out non-uniform.
const (
	caseFlat     = 0 // everything mid-scale
	caseElevated = 1 // one schema pushed high
	caseLow      = 2 // everything near the floor
	caseNoisy    = 3 // uniform random across the scale
	caseCount    = 4
)

// Payload styles exercised against the intake endpoint.
const (
	styleArrayStable    = 0 // array entries keyed by stable item id
	styleArrayCanonical = 1 // array entries keyed by canonical id
	styleMapCanonical   = 2 // map of canonical id -> value
	styleCount          = 3
)

// randInt returns a random int in [0, n) using crypto/rand.
func randInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Submission is one generated assessment payload plus its wire encoding
// choice.
type Submission struct {
	AssessmentID string
	Style        int
	Entries      []ResponseEntry
	MapPayload   map[string]int
}

// Generate builds one synthetic submission covering the full instrument.
func Generate(reg *registry.Registry, assessmentID string) Submission {
	items := reg.Items()
	archetype := randInt(caseCount)
	elevated := ""
	if archetype == caseElevated && len(items) > 0 {
		elevated = items[randInt(len(items))].Schema
	}

	sub := Submission{
		AssessmentID: assessmentID,
		Style:        randInt(styleCount),
	}
	ts := time.Now().UTC().Format(time.RFC3339)

	if sub.Style == styleMapCanonical {
		sub.MapPayload = make(map[string]int, len(items))
	} else {
		sub.Entries = make([]ResponseEntry, 0, len(items))
	}

	for _, item := range items {
		value := valueFor(archetype, item, elevated)
		switch sub.Style {
		case styleArrayStable:
			sub.Entries = append(sub.Entries, ResponseEntry{
				ItemID:    item.StableID,
				Value:     value,
				Timestamp: ts,
			})
		case styleArrayCanonical:
			sub.Entries = append(sub.Entries, ResponseEntry{
				CanonicalID: item.CanonicalID,
				Value:       value,
				Timestamp:   ts,
			})
		case styleMapCanonical:
			sub.MapPayload[item.CanonicalID] = value
		}
	}
	return sub
}

// valueFor picks a Likert value for one item given the responder archetype.
func valueFor(archetype int, item model.Item, elevated string) int {
	switch archetype {
	case caseFlat:
		return 3 + randInt(2)
	case caseElevated:
		if item.Schema == elevated {
			return model.MaxValue - randInt(2)
		}
		return model.MinValue + randInt(3)
	case caseLow:
		return model.MinValue + randInt(2)
	default:
		return model.MinValue + randInt(model.MaxValue-model.MinValue+1)
	}
}

// styleName labels a payload style for log output.
func styleName(style int) string {
	switch style {
	case styleArrayStable:
		return "array/stable"
	case styleArrayCanonical:
		return "array/canonical"
	case styleMapCanonical:
		return "map/canonical"
	default:
		return "style-" + strconv.Itoa(style)
	}
}

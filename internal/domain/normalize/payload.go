package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// Kind discriminates the two accepted payload shapes. The shape is resolved
// exactly once, at the boundary; the pipeline never re-sniffs types.
type Kind int

// Payload shapes.
const (
	KindArray Kind = iota + 1
	KindMap
)

// ArrayEntry is one element of the ordered array form. Identifier fields are
// optional; resolution prefers the opaque id, then the canonical id, then the
// triple reconstructed from the separate numeric fields.
type ArrayEntry struct {
	ItemID      string      `json:"itemId"`
	CanonicalID string      `json:"canonicalId"`
	Domain      int         `json:"domain"`
	Schema      int         `json:"schema"`
	Question    int         `json:"question"`
	Value       json.Number `json:"value"`
	Timestamp   string      `json:"timestamp"`
}

// MapEntry is one key/value pair of the map form. The value is either a bare
// number or an object carrying value plus timestamp.
type MapEntry struct {
	Key       string
	Value     json.Number
	Timestamp string
}

// Payload is the tagged variant handed to the Normalizer.
type Payload struct {
	kind    Kind
	entries []ArrayEntry
	pairs   []MapEntry
}

// Kind reports which shape the payload carried.
func (p Payload) Kind() Kind {
	return p.kind
}

// mapValue mirrors the object variant of a map-form value.
type mapValue struct {
	Value     json.Number `json:"value"`
	Timestamp string      `json:"timestamp"`
}

var (
	canonicalPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	stablePattern    = regexp.MustCompile(`^itm_[0-9a-f]+$`)
	numericPattern   = regexp.MustCompile(`^\d+$`)
)

// recognizedKey reports whether a map key matches any identifier pattern the
// current instrument emits. Payloads whose keys match none trigger the
// best-effort legacy mode.
func recognizedKey(key string) bool {
	return canonicalPattern.MatchString(key) ||
		stablePattern.MatchString(key) ||
		numericPattern.MatchString(key)
}

// ParsePayload resolves the raw JSON into the tagged variant. It fails only
// on malformed JSON or an unrecognizable top-level shape; per-entry problems
// are left for Normalize to collect.
func ParsePayload(raw []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Payload{}, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	switch trimmed[0] {
	case '[':
		return parseArrayPayload(trimmed)
	case '{':
		return parseMapPayload(trimmed)
	default:
		return Payload{}, fmt.Errorf("%w: expected JSON array or object", ErrInvalidPayload)
	}
}

func parseArrayPayload(raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var entries []ArrayEntry
	if err := dec.Decode(&entries); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return Payload{kind: KindArray, entries: entries}, nil
}

func parseMapPayload(raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	pairs := make([]MapEntry, 0, len(obj))
	for key, rawVal := range obj {
		entry := MapEntry{Key: key}
		trimmedVal := bytes.TrimSpace(rawVal)
		if len(trimmedVal) > 0 && trimmedVal[0] == '{' {
			var mv mapValue
			vdec := json.NewDecoder(bytes.NewReader(trimmedVal))
			vdec.UseNumber()
			if err := vdec.Decode(&mv); err != nil {
				return Payload{}, fmt.Errorf("%w: value for key %q: %w", ErrInvalidPayload, key, err)
			}
			entry.Value = mv.Value
			entry.Timestamp = mv.Timestamp
		} else {
			var n json.Number
			if err := json.Unmarshal(trimmedVal, &n); err != nil {
				return Payload{}, fmt.Errorf("%w: value for key %q: %w", ErrInvalidPayload, key, err)
			}
			entry.Value = n
		}
		pairs = append(pairs, entry)
	}

	// Map iteration order is not stable; sort by key so normalization of the
	// same payload is deterministic run to run.
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })

	return Payload{kind: KindMap, pairs: pairs}, nil
}

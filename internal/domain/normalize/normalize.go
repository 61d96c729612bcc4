// Package normalize converts heterogeneous raw response payloads into
// validated, deduplicated response lists keyed by stable item identity.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/logger"
)

// Mode reports how the normalizer treated the payload.
type Mode string

// Normalization modes.
const (
	// ModeStrict requires every entry to resolve and the resolved count to
	// match the instrument's expected total.
	ModeStrict Mode = "strict"
	// ModeLegacy is the best-effort fallback for historical payloads whose
	// keys match no recognized identifier pattern. Completeness is not
	// required; whatever resolves is returned.
	ModeLegacy Mode = "legacy"
)

// Result is the outcome of normalizing one payload. Errors are accumulated,
// never thrown mid-batch, so callers can surface every problem at once.
type Result struct {
	OK        bool
	Mode      Mode
	Responses []model.Response
	Errors    []string
}

// Normalizer resolves raw entries against the item registry.
type Normalizer struct {
	reg *registry.Registry
	log logger.Logger
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used to trace which strategy resolved each item.
func WithLogger(log logger.Logger) Option {
	return func(n *Normalizer) {
		if log != nil {
			n.log = log
		}
	}
}

// New creates a Normalizer bound to an item registry.
func New(reg *registry.Registry, opts ...Option) *Normalizer {
	n := &Normalizer{reg: reg}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// legacyDigits pulls the trailing digit run out of a historical key such as
// "q12" or "item_12"; the digits are the item's display position.
var legacyDigits = regexp.MustCompile(`(\d+)$`)

// Normalize validates every entry of the payload and resolves it to exactly
// one item. Duplicate resolutions, out-of-range values and unresolvable
// identifiers are collected per entry.
func (n *Normalizer) Normalize(ctx context.Context, p Payload) Result {
	res := Result{Mode: ModeStrict}

	switch p.kind {
	case KindArray:
		n.normalizeArray(ctx, p.entries, &res)
	case KindMap:
		if anyUnrecognizedKey(p.pairs) {
			res.Mode = ModeLegacy
		}
		n.normalizeMap(ctx, p.pairs, &res)
	default:
		res.Errors = append(res.Errors, fmt.Sprintf("%v: payload shape not resolved", ErrInvalidPayload))
	}

	if res.Mode == ModeStrict {
		expected := n.reg.ExpectedTotal()
		if len(res.Responses) < expected {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%v: resolved %d of %d responses", ErrIncompleteSubmission, len(res.Responses), expected))
		}
	}

	res.OK = len(res.Errors) == 0
	return res
}

func anyUnrecognizedKey(pairs []MapEntry) bool {
	for _, pair := range pairs {
		if !recognizedKey(pair.Key) {
			return true
		}
	}
	return false
}

func (n *Normalizer) normalizeArray(ctx context.Context, entries []ArrayEntry, res *Result) {
	seen := make(map[string]string, len(entries))
	for i, e := range entries {
		ref := arrayRef(i, e)

		item, strategy, ok := n.resolveArrayEntry(e)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("%v: %s", ErrUnresolvedIdentifier, ref))
			continue
		}
		n.traceResolution(ctx, ref, item.CanonicalID, strategy)

		n.appendResponse(res, seen, ref, item, e.Value, e.Timestamp)
	}
}

func (n *Normalizer) normalizeMap(ctx context.Context, pairs []MapEntry, res *Result) {
	seen := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		ref := fmt.Sprintf("key %q", pair.Key)

		var (
			item     model.Item
			strategy string
			ok       bool
		)
		if res.Mode == ModeLegacy {
			item, strategy, ok = n.resolveLegacyKey(pair.Key)
		} else {
			item, ok = n.reg.ResolveAnyID(pair.Key)
			strategy = "anyId"
		}
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("%v: %s", ErrUnresolvedIdentifier, ref))
			continue
		}
		n.traceResolution(ctx, ref, item.CanonicalID, strategy)

		n.appendResponse(res, seen, ref, item, pair.Value, pair.Timestamp)
	}
}

// appendResponse range-checks the value, rejects duplicate resolutions and
// records the response. All failures accumulate on res.
func (n *Normalizer) appendResponse(res *Result, seen map[string]string, ref string, item model.Item, raw json.Number, ts string) {
	if firstRef, dup := seen[item.StableID]; dup {
		res.Errors = append(res.Errors,
			fmt.Sprintf("%v: %s and %s both resolve to item %s", ErrDuplicateResponse, firstRef, ref, item.CanonicalID))
		return
	}

	value, err := likertValue(raw)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%v: %s: %v", ErrInvalidValue, ref, err))
		// The entry still claims its item so a later duplicate is reported
		// against the first occurrence.
		seen[item.StableID] = ref
		return
	}

	var stamp time.Time
	if ts != "" {
		stamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%v: %s: timestamp must be RFC3339", ErrInvalidValue, ref))
			seen[item.StableID] = ref
			return
		}
	}

	seen[item.StableID] = ref
	res.Responses = append(res.Responses, model.Response{Item: item, Value: value, TS: stamp})
}

// resolveArrayEntry applies the documented fallback order: opaque id first,
// then canonical id, then the triple derived from separate numeric fields.
func (n *Normalizer) resolveArrayEntry(e ArrayEntry) (model.Item, string, bool) {
	if e.ItemID != "" {
		if item, ok := n.reg.ResolveStableID(e.ItemID); ok {
			return item, "stableId", true
		}
	}
	if e.CanonicalID != "" {
		if item, ok := n.reg.ResolveCanonicalID(e.CanonicalID); ok {
			return item, "canonicalId", true
		}
	}
	if e.Domain > 0 && e.Schema > 0 && e.Question > 0 {
		derived := fmt.Sprintf("%d.%d.%d", e.Domain, e.Schema, e.Question)
		if item, ok := n.reg.ResolveCanonicalID(derived); ok {
			return item, "derivedTriple", true
		}
	}
	return model.Item{}, "", false
}

// resolveLegacyKey resolves a key from a legacy-mode map. Recognized
// identifiers keep their usual meaning; only keys no resolver understands
// fall back to trailing digits read as the item's display position.
func (n *Normalizer) resolveLegacyKey(key string) (model.Item, string, bool) {
	if item, ok := n.reg.ResolveAnyID(key); ok {
		return item, "anyId", true
	}
	match := legacyDigits.FindStringSubmatch(key)
	if match == nil {
		return model.Item{}, "", false
	}
	item, ok := n.reg.ResolveAnyID(match[1])
	return item, "legacyDigits", ok
}

func (n *Normalizer) traceResolution(ctx context.Context, ref, canonicalID, strategy string) {
	if n.log == nil {
		return
	}
	n.log.Debug(ctx, "resolved response entry",
		logger.String("entry", ref),
		logger.String("canonicalId", canonicalID),
		logger.String("strategy", strategy),
	)
}

func arrayRef(i int, e ArrayEntry) string {
	switch {
	case e.ItemID != "":
		return fmt.Sprintf("entry %d (itemId=%s)", i, e.ItemID)
	case e.CanonicalID != "":
		return fmt.Sprintf("entry %d (canonicalId=%s)", i, e.CanonicalID)
	default:
		return fmt.Sprintf("entry %d", i)
	}
}

// likertValue parses the raw number and enforces the inclusive 1..6 range.
// Non-integer values are rejected rather than truncated.
func likertValue(raw json.Number) (int, error) {
	if raw.String() == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := raw.Int64()
	if err != nil {
		return 0, fmt.Errorf("value %s is not an integer", raw.String())
	}
	if v < model.MinValue || v > model.MaxValue {
		return 0, fmt.Errorf("value %d outside range %d..%d", v, model.MinValue, model.MaxValue)
	}
	return int(v), nil
}

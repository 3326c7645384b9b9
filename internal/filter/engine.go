package filter

import (
	"time"

	"github.com/recruitflow/filterengine/internal/domain"
)

// Engine evaluates filter trees against in-memory record collections. It is
// a pure, synchronous function of its inputs: the registry and default-field
// table it holds are read-only after construction, so one Engine value may
// serve unboundedly many concurrent callers.
type Engine struct {
	registry domain.RelationshipRegistry
	parser   Parser
}

// NewEngine builds an engine over the built-in relationship and
// default-field tables.
func NewEngine() *Engine {
	return NewEngineWith(domain.NewRelationshipRegistry(), nil)
}

// NewEngineWith builds an engine over an explicit registry and default-field
// overrides, typically produced by the config loader.
func NewEngineWith(registry domain.RelationshipRegistry, defaults map[domain.EntityType]string) *Engine {
	return &Engine{
		registry: registry,
		parser:   NewParser(registry, defaults),
	}
}

// Parse exposes the engine's parser for callers that want to reuse a parsed
// FilterSet across several collections.
func (e *Engine) Parse(target domain.EntityType, raw map[string]any, now time.Time) (domain.FilterSet, error) {
	return e.parser.Parse(target, raw, now)
}

// Apply parses raw once and returns the ordered subsequence of records that
// satisfy it. Specification errors abort the whole call before any record is
// evaluated; no partial result is ever returned. The input slice is never
// mutated and now is injectable for deterministic period resolution.
func (e *Engine) Apply(target domain.EntityType, records []domain.Record, raw map[string]any, now time.Time) ([]domain.Record, error) {
	fs, err := e.parser.Parse(target, raw, now)
	if err != nil {
		return nil, err
	}
	return e.ApplyFilterSet(target, records, fs), nil
}

// ApplyFilterSet evaluates a pre-parsed filter set. It cannot fail: every
// specification error belongs to parsing, and missing record data resolves
// to a match outcome, not an error.
func (e *Engine) ApplyFilterSet(target domain.EntityType, records []domain.Record, fs domain.FilterSet) []domain.Record {
	if fs.Empty() {
		return records
	}
	filtered := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if fs.Period != nil && !withinPeriod(rec, *fs.Period) {
			continue
		}
		if fs.Root != nil && !e.evalNode(*fs.Root, rec, target) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// evalNode walks the filter tree for one record. And short-circuits on the
// first false child, or on the first true child.
func (e *Engine) evalNode(node domain.LogicalNode, rec domain.Record, target domain.EntityType) bool {
	switch node.Op {
	case domain.NodeLeaf:
		return node.Leaf != nil && matchPredicate(*node.Leaf, rec, target, e.registry)
	case domain.NodeAnd:
		for _, child := range node.Children {
			if !e.evalNode(child, rec, target) {
				return false
			}
		}
		return true
	case domain.NodeOr:
		for _, child := range node.Children {
			if e.evalNode(child, rec, target) {
				return true
			}
		}
		return false
	}
	return false
}

// withinPeriod applies the period window to a record's designated timestamp.
// Records with no timestamp field, or with a value that does not parse as an
// instant, are retained: a record cannot be excluded by a filter it has no
// data for.
func withinPeriod(rec domain.Record, window domain.PeriodWindow) bool {
	raw, ok := rec.Timestamp()
	if !ok {
		return true
	}
	t, ok := parseInstant(raw)
	if !ok {
		return true
	}
	return window.Contains(t)
}

// Package filter parses raw nested filter specifications into typed filter
// trees and evaluates them against in-memory record collections.
package filter

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/recruitflow/filterengine/internal/domain"
)

// Reserved keys of the raw filter grammar. Every other key at a grouping
// level must name an entity type.
const (
	keyPeriod   = "period"
	keyAnd      = "and"
	keyOr       = "or"
	keyField    = "field"
	keyOp       = "op"
	keyOperator = "operator"
	keyValue    = "value"
)

// Parser converts the raw nested map/array filter structure into a
// domain.FilterSet. Parsing is single-pass and recursive; it validates
// entity names, operators, value shapes, and cross-entity relationships
// before any record is touched.
type Parser struct {
	registry domain.RelationshipRegistry
	defaults map[domain.EntityType]string
}

// NewParser builds a parser over the given registry and default-field
// overrides. A nil defaults map falls back to the built-in table.
func NewParser(registry domain.RelationshipRegistry, defaults map[domain.EntityType]string) Parser {
	return Parser{registry: registry, defaults: defaults}
}

// Parse converts raw into a FilterSet for filtering target-entity records.
// The period token, if present, is resolved against now so the resulting
// set is immutable and self-contained. An empty raw structure yields an
// empty set, which matches everything.
func (p Parser) Parse(target domain.EntityType, raw map[string]any, now time.Time) (domain.FilterSet, error) {
	if !domain.IsEntityType(string(target)) {
		return domain.FilterSet{}, domain.NewSpecError(domain.ErrUnknownEntity, string(target), "unknown target entity")
	}
	if len(raw) == 0 {
		return domain.FilterSet{}, nil
	}

	var fs domain.FilterSet
	var nodes []domain.LogicalNode
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case keyPeriod:
			token, ok := value.(string)
			if !ok {
				return domain.FilterSet{}, domain.NewSpecError(domain.ErrInvalidPeriodToken, keyPeriod, fmt.Sprintf("token must be a string, got %T", value))
			}
			window, err := domain.ResolvePeriod(token, now)
			if err != nil {
				return domain.FilterSet{}, domain.NewSpecError(domain.ErrInvalidPeriodToken, keyPeriod, token)
			}
			fs.Period = &window
		case keyAnd, keyOr:
			node, err := p.parseGroup(target, domain.NodeOp(key), value, key)
			if err != nil {
				return domain.FilterSet{}, err
			}
			nodes = append(nodes, node)
		default:
			leaf, err := p.parseLeaf(target, key, value, key)
			if err != nil {
				return domain.FilterSet{}, err
			}
			nodes = append(nodes, leaf)
		}
	}

	// Bare entity keys appearing beside an explicit and/or group are
	// implicitly ANDed with it.
	switch len(nodes) {
	case 0:
	case 1:
		fs.Root = &nodes[0]
	default:
		root := domain.NewGroup(domain.NodeAnd, nodes)
		fs.Root = &root
	}
	return fs, nil
}

// parseNode parses one map nested inside an and/or array. The period key is
// only defined at the top level of the grammar, so here it is rejected like
// any other non-entity key.
func (p Parser) parseNode(target domain.EntityType, raw map[string]any, path string) (domain.LogicalNode, error) {
	if len(raw) == 0 {
		return domain.LogicalNode{}, domain.NewSpecError(domain.ErrEmptyLogicalGroup, path, "group element has no keys")
	}
	var nodes []domain.LogicalNode
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		childPath := path + "." + key
		switch key {
		case keyAnd, keyOr:
			node, err := p.parseGroup(target, domain.NodeOp(key), value, childPath)
			if err != nil {
				return domain.LogicalNode{}, err
			}
			nodes = append(nodes, node)
		default:
			leaf, err := p.parseLeaf(target, key, value, childPath)
			if err != nil {
				return domain.LogicalNode{}, err
			}
			nodes = append(nodes, leaf)
		}
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return domain.NewGroup(domain.NodeAnd, nodes), nil
}

func (p Parser) parseGroup(target domain.EntityType, op domain.NodeOp, value any, path string) (domain.LogicalNode, error) {
	items, ok := value.([]any)
	if !ok {
		return domain.LogicalNode{}, domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("%s requires an array of groups, got %T", op, value))
	}
	if len(items) == 0 {
		return domain.LogicalNode{}, domain.NewSpecError(domain.ErrEmptyLogicalGroup, path, string(op)+" group is empty")
	}
	children := make([]domain.LogicalNode, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		sub, ok := item.(map[string]any)
		if !ok {
			return domain.LogicalNode{}, domain.NewSpecError(domain.ErrMalformedOperatorValue, itemPath, fmt.Sprintf("group element must be a map, got %T", item))
		}
		child, err := p.parseNode(target, sub, itemPath)
		if err != nil {
			return domain.LogicalNode{}, err
		}
		children = append(children, child)
	}
	return domain.NewGroup(op, children), nil
}

func (p Parser) parseLeaf(target domain.EntityType, entityName string, value any, path string) (domain.LogicalNode, error) {
	entity, err := domain.ParseEntityType(entityName)
	if err != nil {
		return domain.LogicalNode{}, domain.NewSpecError(domain.ErrUnknownEntity, path, entityName)
	}

	// Cross-entity leaves are validated up front so an unsatisfiable filter
	// fails the whole call before any record is processed.
	if entity != target {
		if _, err := p.registry.JoinField(target, entity); err != nil {
			return domain.LogicalNode{}, domain.NewSpecError(domain.ErrNoRelationshipDefined, path, fmt.Sprintf("%s -> %s", target, entity))
		}
	}

	field, op, operand, err := p.decodeLeafValue(entity, value, path)
	if err != nil {
		return domain.LogicalNode{}, err
	}
	if err := checkOperandShape(op, &operand, path); err != nil {
		return domain.LogicalNode{}, err
	}
	return domain.NewLeaf(domain.Predicate{
		Entity:   entity,
		Field:    field,
		Operator: op,
		Value:    operand,
	}), nil
}

// decodeLeafValue unpacks the three accepted leaf forms: a bare scalar
// (implicit eq), a bare list (implicit in), or a map carrying any of
// field/op/value.
func (p Parser) decodeLeafValue(entity domain.EntityType, value any, path string) (string, domain.FilterOperator, any, error) {
	field := p.defaultField(entity)

	spec, isMap := value.(map[string]any)
	if !isMap {
		if _, isList := value.([]any); isList {
			return field, domain.OperatorIn, value, nil
		}
		return field, domain.OperatorEquals, value, nil
	}

	var (
		op         domain.FilterOperator
		opExplicit bool
		operand    any
		operandSet bool
	)
	for _, key := range sortedKeys(spec) {
		raw := spec[key]
		switch key {
		case keyField:
			name, err := cast.ToStringE(raw)
			if err != nil || name == "" {
				return "", "", nil, domain.NewSpecError(domain.ErrMalformedOperatorValue, path, "field must be a non-empty string")
			}
			field = name
		case keyOp, keyOperator:
			token, err := cast.ToStringE(raw)
			if err != nil {
				return "", "", nil, domain.NewSpecError(domain.ErrUnknownOperator, path, fmt.Sprintf("operator must be a string, got %T", raw))
			}
			parsed, err := domain.ParseFilterOperator(token)
			if err != nil {
				return "", "", nil, domain.NewSpecError(domain.ErrUnknownOperator, path, token)
			}
			op = parsed
			opExplicit = true
		case keyValue:
			operand = raw
			operandSet = true
		default:
			return "", "", nil, domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("unexpected key %q in leaf filter", key))
		}
	}

	if !opExplicit {
		if _, isList := operand.([]any); isList {
			op = domain.OperatorIn
		} else {
			op = domain.OperatorEquals
		}
	}
	if !operandSet && op != domain.OperatorExists {
		return "", "", nil, domain.NewSpecError(domain.ErrMalformedOperatorValue, path, "leaf filter is missing a value")
	}
	return field, op, operand, nil
}

// checkOperandShape enforces each operator's arity contract and normalizes
// list operands to []any.
func checkOperandShape(op domain.FilterOperator, operand *any, path string) error {
	switch op.Shape() {
	case domain.OperandScalar:
		switch (*operand).(type) {
		case []any, map[string]any:
			return domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("%s requires a scalar value", op))
		}
		if *operand == nil {
			return domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("%s requires a non-null value", op))
		}
	case domain.OperandList:
		list, err := cast.ToSliceE(*operand)
		if err != nil {
			return domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("%s requires a list, got %T", op, *operand))
		}
		if len(list) == 0 {
			return domain.NewSpecError(domain.ErrMalformedOperatorValue, path, fmt.Sprintf("%s requires a non-empty list", op))
		}
		*operand = list
	case domain.OperandPair:
		list, err := cast.ToSliceE(*operand)
		if err != nil || len(list) != 2 {
			return domain.NewSpecError(domain.ErrMalformedOperatorValue, path, "between requires exactly two bounds")
		}
		*operand = list
	case domain.OperandNone:
		// exists ignores its operand entirely.
	}
	return nil
}

func (p Parser) defaultField(entity domain.EntityType) string {
	if field, ok := p.defaults[entity]; ok {
		return field
	}
	return domain.DefaultField(entity)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

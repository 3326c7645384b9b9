package domain

import "fmt"

// FilterOperator enumerates the supported per-field comparison operations.
// Each operator has a fixed shape contract for its operand, checked at parse
// time by OperandShape.
type FilterOperator string

const (
	OperatorEquals         FilterOperator = "eq"
	OperatorNotEquals      FilterOperator = "ne"
	OperatorIn             FilterOperator = "in"
	OperatorNotIn          FilterOperator = "not_in"
	OperatorGreaterThan    FilterOperator = "gt"
	OperatorGreaterOrEqual FilterOperator = "gte"
	OperatorLessThan       FilterOperator = "lt"
	OperatorLessOrEqual    FilterOperator = "lte"
	OperatorBetween        FilterOperator = "between"
	OperatorContains       FilterOperator = "contains"
	OperatorExists         FilterOperator = "exists"
)

// OperandShape describes what value shape an operator accepts.
type OperandShape int

const (
	// OperandScalar accepts a single non-list value.
	OperandScalar OperandShape = iota
	// OperandList accepts a non-empty list of values.
	OperandList
	// OperandPair accepts a list of exactly two bounds.
	OperandPair
	// OperandNone ignores the operand entirely.
	OperandNone
)

var operatorShapes = map[FilterOperator]OperandShape{
	OperatorEquals:         OperandScalar,
	OperatorNotEquals:      OperandScalar,
	OperatorIn:             OperandList,
	OperatorNotIn:          OperandList,
	OperatorGreaterThan:    OperandScalar,
	OperatorGreaterOrEqual: OperandScalar,
	OperatorLessThan:       OperandScalar,
	OperatorLessOrEqual:    OperandScalar,
	OperatorBetween:        OperandPair,
	OperatorContains:       OperandScalar,
	OperatorExists:         OperandNone,
}

// ParseFilterOperator converts a raw operator token into a FilterOperator.
func ParseFilterOperator(raw string) (FilterOperator, error) {
	op := FilterOperator(raw)
	if _, ok := operatorShapes[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperator, raw)
	}
	return op, nil
}

// Shape returns the operand shape contract for the operator.
func (op FilterOperator) Shape() OperandShape {
	return operatorShapes[op]
}

// Predicate is one atomic test: a field of one entity compared against a
// value under a single operator. Value shape is guaranteed to match the
// operator's contract once the predicate has passed parsing.
type Predicate struct {
	Entity   EntityType
	Field    string
	Operator FilterOperator
	Value    any
}

// NodeOp tags a LogicalNode as a conjunction, disjunction, or leaf.
type NodeOp string

const (
	NodeAnd  NodeOp = "and"
	NodeOr   NodeOp = "or"
	NodeLeaf NodeOp = "leaf"
)

// LogicalNode is one node of the filter tree: either an and/or grouping of
// at least one child, or a leaf predicate. Trees nest to arbitrary depth.
type LogicalNode struct {
	Op       NodeOp
	Children []LogicalNode
	Leaf     *Predicate
}

// NewLeaf wraps a predicate in a leaf node.
func NewLeaf(p Predicate) LogicalNode {
	return LogicalNode{Op: NodeLeaf, Leaf: &p}
}

// NewGroup builds an and/or node over the given children.
func NewGroup(op NodeOp, children []LogicalNode) LogicalNode {
	return LogicalNode{Op: op, Children: children}
}

// FilterSet is the root container handed to the engine: an optional resolved
// period window plus a filter tree. A nil Root means "match everything".
type FilterSet struct {
	Period *PeriodWindow
	Root   *LogicalNode
}

// Empty reports whether the filter set constrains nothing at all.
func (fs FilterSet) Empty() bool {
	return fs.Period == nil && fs.Root == nil
}

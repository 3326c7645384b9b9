package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/recruitflow/filterengine/internal/domain"
)

// matchPredicate decides whether one record satisfies one leaf predicate.
// It never errors for predicates that passed parsing: a record missing the
// referenced field simply does not match. When the predicate names an entity
// other than the record's own, the comparison runs against the record's join
// field, so cross-entity filtering is key-equality only.
func matchPredicate(p domain.Predicate, rec domain.Record, target domain.EntityType, registry domain.RelationshipRegistry) bool {
	field := p.Field
	if p.Entity != target {
		joinField, err := registry.JoinField(target, p.Entity)
		if err != nil {
			// The relationship was checked at parse time; a miss here means
			// the engine was handed a foreign tree and cannot match.
			return false
		}
		field = joinField
	}

	value, present := rec[field]
	if p.Operator == domain.OperatorExists {
		return present && value != nil
	}
	if !present {
		return false
	}

	switch p.Operator {
	case domain.OperatorEquals:
		return valuesEqual(value, p.Value)
	case domain.OperatorNotEquals:
		return !valuesEqual(value, p.Value)
	case domain.OperatorIn:
		return listContains(p.Value, value)
	case domain.OperatorNotIn:
		return !listContains(p.Value, value)
	case domain.OperatorGreaterThan:
		cmp, ok := compareValues(value, p.Value)
		return ok && cmp > 0
	case domain.OperatorGreaterOrEqual:
		cmp, ok := compareValues(value, p.Value)
		return ok && cmp >= 0
	case domain.OperatorLessThan:
		cmp, ok := compareValues(value, p.Value)
		return ok && cmp < 0
	case domain.OperatorLessOrEqual:
		cmp, ok := compareValues(value, p.Value)
		return ok && cmp <= 0
	case domain.OperatorBetween:
		bounds, ok := p.Value.([]any)
		if !ok || len(bounds) != 2 {
			return false
		}
		low, okLow := compareValues(value, bounds[0])
		high, okHigh := compareValues(value, bounds[1])
		return okLow && okHigh && low >= 0 && high <= 0
	case domain.OperatorContains:
		haystack := strings.ToLower(cast.ToString(value))
		needle := strings.ToLower(cast.ToString(p.Value))
		return strings.Contains(haystack, needle)
	}
	return false
}

// valuesEqual compares two values after type normalization: when both sides
// parse as numbers the comparison is numeric, otherwise both are stringified.
func valuesEqual(a, b any) bool {
	if af, errA := cast.ToFloat64E(a); errA == nil {
		if bf, errB := cast.ToFloat64E(b); errB == nil {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// listContains tests membership of value in the operand list, using the same
// normalization as valuesEqual.
func listContains(operand, value any) bool {
	list, ok := operand.([]any)
	if !ok {
		return false
	}
	for _, candidate := range list {
		if valuesEqual(value, candidate) {
			return true
		}
	}
	return false
}

// compareValues orders two values numerically when both sides are numeric,
// or chronologically when both parse as instants. Anything else is not
// comparable and the ordering predicate evaluates false.
func compareValues(a, b any) (int, bool) {
	if af, errA := cast.ToFloat64E(a); errA == nil {
		if bf, errB := cast.ToFloat64E(b); errB == nil {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	at, okA := parseInstant(a)
	bt, okB := parseInstant(b)
	if !okA || !okB {
		return 0, false
	}
	switch {
	case at.Before(bt):
		return -1, true
	case at.After(bt):
		return 1, true
	default:
		return 0, true
	}
}

// instantLayouts are the timestamp shapes records carry in practice.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseInstant extracts a time.Time from a record value.
func parseInstant(v any) (time.Time, bool) {
	switch value := v.(type) {
	case time.Time:
		return value, true
	case *time.Time:
		if value == nil {
			return time.Time{}, false
		}
		return *value, true
	case string:
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

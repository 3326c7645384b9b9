package filter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/recruitflow/filterengine/internal/domain"
)

var parseNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestParser() Parser {
	return NewParser(domain.NewRelationshipRegistry(), nil)
}

func TestParseScalarLeafDefaults(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{"recruiters": "R1"}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Root == nil || fs.Root.Op != domain.NodeLeaf {
		t.Fatalf("expected a single leaf root, got %+v", fs.Root)
	}
	leaf := fs.Root.Leaf
	if leaf.Entity != domain.EntityRecruiters {
		t.Errorf("expected recruiters, got %s", leaf.Entity)
	}
	if leaf.Field != "id" {
		t.Errorf("expected default field id, got %q", leaf.Field)
	}
	if leaf.Operator != domain.OperatorEquals {
		t.Errorf("expected implicit eq, got %s", leaf.Operator)
	}
	if leaf.Value != "R1" {
		t.Errorf("expected value R1, got %v", leaf.Value)
	}
}

func TestParseListLeafImpliesIn(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{"sources": []any{"hh", "linkedin"}}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	leaf := fs.Root.Leaf
	if leaf.Operator != domain.OperatorIn {
		t.Fatalf("expected implicit in, got %s", leaf.Operator)
	}
	list, ok := leaf.Value.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected a two-element list operand, got %v", leaf.Value)
	}
}

func TestParseExplicitOperatorForm(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityVacancies, map[string]any{
		"vacancies": map[string]any{"op": "ne", "value": "CLOSED"},
	}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	leaf := fs.Root.Leaf
	if leaf.Field != "state" {
		t.Errorf("expected vacancies default field state, got %q", leaf.Field)
	}
	if leaf.Operator != domain.OperatorNotEquals {
		t.Errorf("expected ne, got %s", leaf.Operator)
	}
}

func TestParseNamedFieldForm(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{
		"applicants": map[string]any{"field": "salary", "operator": "gt", "value": 50000},
	}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	leaf := fs.Root.Leaf
	if leaf.Field != "salary" {
		t.Errorf("expected field salary, got %q", leaf.Field)
	}
	if leaf.Operator != domain.OperatorGreaterThan {
		t.Errorf("expected gt, got %s", leaf.Operator)
	}
}

func TestParseNestedGroups(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{
		"or": []any{
			map[string]any{"recruiters": "R1"},
			map[string]any{
				"and": []any{
					map[string]any{"sources": "hh"},
					map[string]any{"vacancies": float64(7)},
				},
			},
		},
	}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Root.Op != domain.NodeOr {
		t.Fatalf("expected or root, got %s", fs.Root.Op)
	}
	if len(fs.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(fs.Root.Children))
	}
	inner := fs.Root.Children[1]
	if inner.Op != domain.NodeAnd || len(inner.Children) != 2 {
		t.Fatalf("expected nested and with 2 children, got %+v", inner)
	}
}

func TestParseBareKeysBesideGroupAreANDed(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{
		"recruiters": "R1",
		"or": []any{
			map[string]any{"sources": "hh"},
			map[string]any{"sources": "linkedin"},
		},
	}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Root.Op != domain.NodeAnd {
		t.Fatalf("expected implicit and root, got %s", fs.Root.Op)
	}
	if len(fs.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(fs.Root.Children))
	}
}

func TestParseMultipleNestedKeysAreANDed(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{
		"or": []any{
			map[string]any{"recruiters": "R1", "sources": "hh"},
			map[string]any{"recruiters": "R2"},
		},
	}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first := fs.Root.Children[0]
	if first.Op != domain.NodeAnd || len(first.Children) != 2 {
		t.Fatalf("expected multi-key group element to be an and node, got %+v", first)
	}
}

func TestParsePeriodToken(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{"period": "1 month"}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Period == nil {
		t.Fatal("expected a resolved period window")
	}
	if !fs.Period.End.Equal(parseNow) {
		t.Errorf("expected end anchored at now, got %v", fs.Period.End)
	}
	if fs.Root != nil {
		t.Error("expected no tree for a period-only filter")
	}
}

func TestParseEmptyFilterIsEmptySet(t *testing.T) {
	p := newTestParser()
	fs, err := p.Parse(domain.EntityApplicants, map[string]any{}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !fs.Empty() {
		t.Fatalf("expected empty filter set, got %+v", fs)
	}
}

func TestParseErrorTaxonomy(t *testing.T) {
	p := newTestParser()
	cases := []struct {
		name     string
		target   domain.EntityType
		raw      map[string]any
		sentinel error
		path     string
	}{
		{
			name:     "unknown target entity",
			target:   domain.EntityType("unicorns"),
			raw:      map[string]any{"recruiters": "R1"},
			sentinel: domain.ErrUnknownEntity,
			path:     "unicorns",
		},
		{
			name:     "unknown leaf entity",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"unicorns": "U1"},
			sentinel: domain.ErrUnknownEntity,
			path:     "unicorns",
		},
		{
			name:     "unknown operator",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"recruiters": map[string]any{"op": "matches", "value": "R1"}},
			sentinel: domain.ErrUnknownOperator,
			path:     "recruiters",
		},
		{
			name:     "between wrong arity",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"applicants": map[string]any{"field": "salary", "op": "between", "value": []any{1}}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "applicants",
		},
		{
			name:     "in with empty list",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"sources": map[string]any{"op": "in", "value": []any{}}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "sources",
		},
		{
			name:     "scalar operator given a list",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"recruiters": map[string]any{"op": "eq", "value": []any{"R1"}}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "recruiters",
		},
		{
			name:     "leaf missing value",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"recruiters": map[string]any{"op": "eq"}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "recruiters",
		},
		{
			name:     "unexpected leaf key",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"recruiters": map[string]any{"value": "R1", "fuzzy": true}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "recruiters",
		},
		{
			name:     "empty and group",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"and": []any{}},
			sentinel: domain.ErrEmptyLogicalGroup,
			path:     "and",
		},
		{
			name:     "group element with no keys",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"or": []any{map[string]any{}}},
			sentinel: domain.ErrEmptyLogicalGroup,
			path:     "or[0]",
		},
		{
			name:     "group element not a map",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"or": []any{"recruiters"}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "or[0]",
		},
		{
			name:     "group value not an array",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"and": map[string]any{"recruiters": "R1"}},
			sentinel: domain.ErrMalformedOperatorValue,
			path:     "and",
		},
		{
			name:     "invalid period token",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"period": "last fortnight"},
			sentinel: domain.ErrInvalidPeriodToken,
			path:     "period",
		},
		{
			name:     "period token not a string",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"period": 30},
			sentinel: domain.ErrInvalidPeriodToken,
			path:     "period",
		},
		{
			name:     "period nested inside a group",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"or": []any{map[string]any{"period": "today"}}},
			sentinel: domain.ErrUnknownEntity,
			path:     "or[0].period",
		},
		{
			name:     "no relationship to leaf entity",
			target:   domain.EntityApplicants,
			raw:      map[string]any{"divisions": float64(3)},
			sentinel: domain.ErrNoRelationshipDefined,
			path:     "divisions",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(tc.target, tc.raw, parseNow)
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			var spec *domain.SpecError
			if !errors.As(err, &spec) {
				t.Fatalf("expected a SpecError, got %T", err)
			}
			if !strings.Contains(spec.Path, tc.path) {
				t.Errorf("expected path containing %q, got %q", tc.path, spec.Path)
			}
		})
	}
}

func TestParseDefaultFieldOverride(t *testing.T) {
	p := NewParser(domain.NewRelationshipRegistry(), map[domain.EntityType]string{
		domain.EntitySources: "name",
	})
	fs, err := p.Parse(domain.EntitySources, map[string]any{"sources": "HeadHunter"}, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fs.Root.Leaf.Field != "name" {
		t.Errorf("expected overridden default field name, got %q", fs.Root.Leaf.Field)
	}
}

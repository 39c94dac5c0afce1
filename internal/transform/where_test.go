package transform

import (
	"errors"
	"testing"

	"github.com/consentbase/consentdb/pkg/types"
)

func TestResolveWhereEmptyMatchesAll(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)
	resolved, err := tr.ResolveWhere("consent", nil)
	if err != nil {
		t.Fatalf("ResolveWhere failed: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("expected no conditions, got %d", len(resolved))
	}
}

func TestResolveWhereDefaultsToEqAnd(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)

	resolved, err := tr.ResolveWhere("consent", types.Where{
		{Field: "subjectId", Value: "sub_1"},
	})
	if err != nil {
		t.Fatalf("ResolveWhere failed: %v", err)
	}
	rc := resolved[0]
	if rc.Operator != types.OpEq || rc.Connector != types.ConnectorAnd {
		t.Errorf("defaults not applied: %+v", rc)
	}
	if rc.Column != "subject_id" {
		t.Errorf("field not resolved to storage column: %q", rc.Column)
	}
}

func TestResolveWhereCoercesValues(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)

	resolved, err := tr.ResolveWhere("consent", types.Where{
		{Field: "isActive", Value: true},
	})
	if err != nil {
		t.Fatalf("ResolveWhere failed: %v", err)
	}
	if resolved[0].Value != int64(1) {
		t.Errorf("boolean condition value not coerced: %v", resolved[0].Value)
	}
}

func TestResolveWhereInRequiresSlice(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)

	_, err := tr.ResolveWhere("consent", types.Where{
		{Field: "status", Operator: types.OpIn, Value: "not-a-slice"},
	})
	if !errors.Is(err, types.ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}

	resolved, err := tr.ResolveWhere("consent", types.Where{
		{Field: "status", Operator: types.OpIn, Value: []string{"active", "withdrawn"}},
	})
	if err != nil {
		t.Fatalf("ResolveWhere failed for slice value: %v", err)
	}
	if len(resolved[0].Values) != 2 {
		t.Errorf("expected 2 coerced elements, got %v", resolved[0].Values)
	}
}

func TestResolveWherePatternOperatorsRequireStrings(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)

	for _, op := range []types.Operator{types.OpContains, types.OpStartsWith, types.OpEndsWith, types.OpILike} {
		_, err := tr.ResolveWhere("consent", types.Where{
			{Field: "status", Operator: op, Value: 42},
		})
		if !errors.Is(err, types.ErrInvalidOperator) {
			t.Errorf("operator %s: expected ErrInvalidOperator, got %v", op, err)
		}
	}
}

func TestResolveWhereUnknownFieldFailsEagerly(t *testing.T) {
	tr := New(testSchemas(), nil, sqliteCaps)

	_, err := tr.ResolveWhere("consent", types.Where{
		{Field: "nope", Value: 1},
	})
	if !errors.Is(err, types.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestSplitGroups(t *testing.T) {
	conditions := []ResolvedCondition{
		{Column: "a", Connector: types.ConnectorAnd},
		{Column: "b", Connector: types.ConnectorOr},
		{Column: "c", Connector: types.ConnectorAnd},
	}
	andGroup, orGroup := SplitGroups(conditions)
	if len(andGroup) != 2 || len(orGroup) != 1 {
		t.Errorf("unexpected split: and=%d or=%d", len(andGroup), len(orGroup))
	}
}

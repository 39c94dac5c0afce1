package types

import (
	"errors"
	"reflect"
	"testing"
)

func testSchemas() SchemaMap {
	return SchemaMap{
		"consent": {
			EntityName:  "consent",
			StorageName: "consents",
			Prefix:      "cns",
			Fields: []Field{
				{Name: "subjectId", StorageName: "subject_id", Type: FieldString, Required: true},
				{Name: "status", Type: FieldString, DefaultValue: "active"},
			},
		},
	}
}

func TestSchemaMapEntity(t *testing.T) {
	schemas := testSchemas()

	schema, err := schemas.Entity("consent")
	if err != nil {
		t.Fatalf("Entity failed: %v", err)
	}
	if schema.Table() != "consents" {
		t.Errorf("expected table consents, got %s", schema.Table())
	}

	_, err = schemas.Entity("consnet")
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound, got %v", err)
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatal("expected a *SchemaError")
	}
	if !reflect.DeepEqual(schemaErr.Valid, []string{"consent"}) {
		t.Errorf("expected valid entities [consent], got %v", schemaErr.Valid)
	}
}

func TestFieldNamesListsIDFirst(t *testing.T) {
	schema := testSchemas()["consent"]
	want := []string{"id", "subjectId", "status"}
	if got := schema.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames = %v, want %v", got, want)
	}
}

func TestFieldColumnFallsBackToName(t *testing.T) {
	f := Field{Name: "status", Type: FieldString}
	if f.Column() != "status" {
		t.Errorf("expected column status, got %s", f.Column())
	}
	f.StorageName = "consent_status"
	if f.Column() != "consent_status" {
		t.Errorf("expected column consent_status, got %s", f.Column())
	}
}

func TestFieldDefault(t *testing.T) {
	literal := Field{Name: "status", DefaultValue: "active"}
	if !literal.HasDefault() || literal.Default() != "active" {
		t.Error("literal default not applied")
	}

	calls := 0
	generated := Field{Name: "token", DefaultFunc: func() any {
		calls++
		return "tok-1"
	}}
	if generated.Default() != "tok-1" || calls != 1 {
		t.Error("generator default not invoked exactly once")
	}

	none := Field{Name: "note"}
	if none.HasDefault() {
		t.Error("field without default reports HasDefault")
	}
}

func TestQueryEffectiveLimit(t *testing.T) {
	if got := (Query{}).EffectiveLimit(); got != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, got)
	}
	if got := (Query{Limit: 5}).EffectiveLimit(); got != 5 {
		t.Errorf("expected limit 5, got %d", got)
	}
}

func TestConditionHelpers(t *testing.T) {
	c := Eq("status", "active")
	if c.Operator != OpEq || c.Field != "status" || c.Value != "active" {
		t.Errorf("Eq built unexpected condition: %+v", c)
	}
	or := c.Or()
	if or.Connector != ConnectorOr {
		t.Error("Or did not set the OR connector")
	}
	if c.Connector == ConnectorOr {
		t.Error("Or mutated the receiver")
	}
}

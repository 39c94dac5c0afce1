package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/consentbase/consentdb/internal/memory"
	"github.com/consentbase/consentdb/pkg/types"
)

func newTestEngine(t *testing.T, reg *Registry) *Engine {
	t.Helper()
	opts := types.Options{
		Schemas: types.SchemaMap{
			"consent": {
				EntityName: "consent",
				Prefix:     "cns",
				Fields: []types.Field{
					{Name: "subjectId", Type: types.FieldString, Required: true},
					{Name: "status", Type: types.FieldString, DefaultValue: "active"},
					{Name: "reviewed", Type: types.FieldBoolean},
				},
			},
		},
	}
	return NewEngine(memory.New(memory.NewStore(), opts), reg, nil)
}

func TestCreateNoHooks(t *testing.T) {
	e := newTestEngine(t, NewRegistry())
	got, err := e.CreateWithHooks(context.Background(), "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got == nil || got["subjectId"] != "sub_1" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestBeforeHookAbort(t *testing.T) {
	reg := NewRegistry()
	reg.Before("consent", OpCreate, func(ctx context.Context, data types.Record) (Result, error) {
		return Abort(), nil
	})
	afterRan := false
	reg.After("consent", OpCreate, func(ctx context.Context, record types.Record) error {
		afterRan = true
		return nil
	})
	e := newTestEngine(t, reg)
	ctx := context.Background()

	got, err := e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got != nil {
		t.Errorf("aborted create returned %v, want nil", got)
	}
	if afterRan {
		t.Error("after-hook ran despite abort")
	}

	// The adapter was never called.
	n, err := e.Adapter().Count(ctx, "consent", nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("adapter persisted %d records after abort", n)
	}
}

func TestBeforeHookTransform(t *testing.T) {
	reg := NewRegistry()
	reg.Before("consent", OpCreate, func(ctx context.Context, data types.Record) (Result, error) {
		next := types.Record{"reviewed": true}
		for k, v := range data {
			next[k] = v
		}
		return Transform(next), nil
	})
	e := newTestEngine(t, reg)

	got, err := e.CreateWithHooks(context.Background(), "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got["reviewed"] != true {
		t.Errorf("transform not applied to persisted record: %v", got)
	}
}

func TestBeforeHooksChainInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Before("consent", OpCreate, func(ctx context.Context, data types.Record) (Result, error) {
		data["status"] = "pending"
		return Transform(data), nil
	})
	reg.Before("consent", OpCreate, func(ctx context.Context, data types.Record) (Result, error) {
		if data["status"] != "pending" {
			t.Errorf("second hook did not see first hook's transform: %v", data)
		}
		return Continue(), nil
	})
	e := newTestEngine(t, reg)

	got, err := e.CreateWithHooks(context.Background(), "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got["status"] != "pending" {
		t.Errorf("chained transform lost: %v", got)
	}
}

func TestHookErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	reg.Before("consent", OpCreate, func(ctx context.Context, data types.Record) (Result, error) {
		return Result{}, boom
	})
	e := newTestEngine(t, reg)

	_, err := e.CreateWithHooks(context.Background(), "consent", types.Record{"subjectId": "sub_1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
}

func TestAfterHookSeesPersistedRecord(t *testing.T) {
	var seenID string
	reg := NewRegistry()
	reg.After("consent", OpCreate, func(ctx context.Context, record types.Record) error {
		seenID, _ = record["id"].(string)
		return nil
	})
	e := newTestEngine(t, reg)

	got, err := e.CreateWithHooks(context.Background(), "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if seenID == "" || seenID != got["id"] {
		t.Errorf("after-hook saw id %q, pipeline returned %q", seenID, got["id"])
	}
}

func TestCustomFnSkipsAdapter(t *testing.T) {
	e := newTestEngine(t, NewRegistry())
	ctx := context.Background()

	custom := func(ctx context.Context, data types.Record) (types.Record, error) {
		return types.Record{"id": "cns_custom", "subjectId": "sub_1"}, nil
	}
	got, err := e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub_1"}, WithCustom(custom, true))
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got["id"] != "cns_custom" {
		t.Fatalf("custom result not used: %v", got)
	}

	n, err := e.Adapter().Count(ctx, "consent", nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("adapter ran despite non-nil custom result, count = %d", n)
	}
}

func TestCustomFnNilResultFallsBack(t *testing.T) {
	e := newTestEngine(t, NewRegistry())
	ctx := context.Background()

	custom := func(ctx context.Context, data types.Record) (types.Record, error) {
		return nil, nil
	}
	got, err := e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub_1"}, WithCustom(custom, true))
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected adapter fallback to run")
	}

	// With executeMainFn false, a nil custom result ends the operation.
	got, err = e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub_2"}, WithCustom(custom, false))
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
}

func TestUpdateWithHooks(t *testing.T) {
	reg := NewRegistry()
	reg.Before("consent", OpUpdate, func(ctx context.Context, change types.Record) (Result, error) {
		change["reviewed"] = true
		return Transform(change), nil
	})
	e := newTestEngine(t, reg)
	ctx := context.Background()

	created, err := e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub_1"})
	if err != nil {
		t.Fatalf("CreateWithHooks failed: %v", err)
	}

	updated, err := e.UpdateWithHooks(ctx, "consent",
		types.Where{types.Eq("id", created["id"])}, types.Record{"status": "withdrawn"})
	if err != nil {
		t.Fatalf("UpdateWithHooks failed: %v", err)
	}
	if updated["status"] != "withdrawn" || updated["reviewed"] != true {
		t.Errorf("update hooks not applied: %v", updated)
	}
}

func TestUpdateManyWithHooksAfterPerRecord(t *testing.T) {
	var afterCount int
	reg := NewRegistry()
	reg.After("consent", OpUpdate, func(ctx context.Context, record types.Record) error {
		afterCount++
		return nil
	})
	e := newTestEngine(t, reg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.CreateWithHooks(ctx, "consent", types.Record{"subjectId": "sub"}); err != nil {
			t.Fatalf("CreateWithHooks failed: %v", err)
		}
	}

	updated, err := e.UpdateManyWithHooks(ctx, "consent", nil, types.Record{"status": "withdrawn"})
	if err != nil {
		t.Fatalf("UpdateManyWithHooks failed: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("expected 3 updated, got %d", len(updated))
	}
	if afterCount != 3 {
		t.Errorf("after-hook ran %d times, want 3", afterCount)
	}
}

// Package pipeline wraps adapter writes with registered before/after
// hooks. Before-hooks run in registration order and can veto the write
// or replace its payload; after-hooks observe the persisted record.
package pipeline

import (
	"context"

	"github.com/consentbase/consentdb/pkg/types"
)

// Op names a write operation hooks can attach to. UpdateMany shares the
// update hooks since both apply the same change semantics.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// BeforeHook runs before the adapter write. The record it receives is the
// working payload, including transformations applied by earlier hooks.
type BeforeHook func(ctx context.Context, data types.Record) (Result, error)

// AfterHook runs after a successful write with the persisted record.
// Side effects only; the committed result is not altered.
type AfterHook func(ctx context.Context, record types.Record) error

type resultKind int

const (
	kindContinue resultKind = iota
	kindTransform
	kindAbort
)

// Result is a before-hook's verdict: continue unchanged, continue with
// replaced data, or abort the operation.
type Result struct {
	kind resultKind
	data types.Record
}

// Continue leaves the working data unchanged.
func Continue() Result { return Result{kind: kindContinue} }

// Transform replaces the working data for the rest of the pipeline.
func Transform(data types.Record) Result { return Result{kind: kindTransform, data: data} }

// Abort halts the operation. The pipeline returns nil without calling
// the adapter or any after-hooks. An abort is control flow, not an
// error, and carries no reason.
func Abort() Result { return Result{kind: kindAbort} }

type hookSet struct {
	before []BeforeHook
	after  []AfterHook
}

// Registry holds hooks keyed by entity and operation.
type Registry struct {
	entries map[string]map[Op]*hookSet
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]map[Op]*hookSet)}
}

// Before registers a before-hook for the entity/operation pair.
func (r *Registry) Before(entity string, op Op, h BeforeHook) {
	s := r.set(entity, op)
	s.before = append(s.before, h)
}

// After registers an after-hook for the entity/operation pair.
func (r *Registry) After(entity string, op Op, h AfterHook) {
	s := r.set(entity, op)
	s.after = append(s.after, h)
}

func (r *Registry) set(entity string, op Op) *hookSet {
	ops, ok := r.entries[entity]
	if !ok {
		ops = make(map[Op]*hookSet)
		r.entries[entity] = ops
	}
	s, ok := ops[op]
	if !ok {
		s = &hookSet{}
		ops[op] = s
	}
	return s
}

func (r *Registry) hooks(entity string, op Op) *hookSet {
	if r == nil {
		return nil
	}
	if ops, ok := r.entries[entity]; ok {
		return ops[op]
	}
	return nil
}

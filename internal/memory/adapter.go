package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/consentbase/consentdb/internal/transform"
	"github.com/consentbase/consentdb/pkg/types"
)

// Compile-time interface check: Adapter must implement types.Adapter.
var _ types.Adapter = (*Adapter)(nil)

// Adapter implements the storage contract over an in-memory Store. The
// mutex guards map access within one call; it does not serialize across
// calls, so concurrent writers outside a transaction can interleave.
type Adapter struct {
	mu    sync.RWMutex
	store Store
	tr    *transform.Transformer
	opts  types.Options
	log   *slog.Logger
}

// New builds a memory adapter owning the given store. A nil store starts
// empty. The memory backend stores every logical type natively, so the
// transformer's type coercion is a no-op.
func New(store Store, opts types.Options) *Adapter {
	if store == nil {
		store = NewStore()
	}
	caps := transform.Capabilities{NativeBooleans: true, NativeDates: true, NativeJSON: true}
	return &Adapter{
		store: store,
		tr:    transform.New(opts.Schemas, opts.GenerateID, caps),
		opts:  opts,
		log:   opts.Log(),
	}
}

// Create persists a new record and returns it, including the assigned ID.
func (a *Adapter) Create(ctx context.Context, model string, data types.Record, selectFields ...string) (types.Record, error) {
	row, err := a.tr.Input(model, data, transform.ActionCreate)
	if err != nil {
		return nil, err
	}
	table, err := a.tr.TableName(model)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.store[table] = append(a.store[table], cloneRecord(row))
	a.mu.Unlock()

	return a.tr.Output(model, row, selectFields)
}

// FindOne returns the first record in document order matching where, or
// nil when none does.
func (a *Adapter) FindOne(ctx context.Context, model string, where types.Where, selectFields ...string) (types.Record, error) {
	table, match, err := a.compile(model, where)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, rec := range a.store[table] {
		if match(rec) {
			return a.tr.Output(model, cloneRecord(rec), selectFields)
		}
	}
	return nil, nil
}

// FindMany returns matching records in document order, sorted when the
// query asks for it, with the offset applied before the limit.
func (a *Adapter) FindMany(ctx context.Context, model string, q types.Query) ([]types.Record, error) {
	table, match, err := a.compile(model, q.Where)
	if err != nil {
		return nil, err
	}

	var sortColumn string
	if q.SortBy != nil {
		sortColumn, err = a.tr.FieldName(model, q.SortBy.Field)
		if err != nil {
			return nil, err
		}
	}

	a.mu.RLock()
	var matched []types.Record
	for _, rec := range a.store[table] {
		if match(rec) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	a.mu.RUnlock()

	if sortColumn != "" {
		desc := q.SortBy.Direction == types.SortDesc
		sort.SliceStable(matched, func(i, j int) bool {
			cmp, ok := compareValues(matched[i][sortColumn], matched[j][sortColumn])
			if !ok {
				return false
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Offset >= len(matched) {
		return []types.Record{}, nil
	}
	matched = matched[q.Offset:]
	if limit := q.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]types.Record, 0, len(matched))
	for _, rec := range matched {
		entity, err := a.tr.Output(model, rec, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of matching records.
func (a *Adapter) Count(ctx context.Context, model string, where types.Where) (int64, error) {
	table, match, err := a.compile(model, where)
	if err != nil {
		return 0, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	var n int64
	for _, rec := range a.store[table] {
		if match(rec) {
			n++
		}
	}
	return n, nil
}

// Update applies change to every matching record and returns the first one
// updated, or nil when nothing matched.
func (a *Adapter) Update(ctx context.Context, model string, where types.Where, change types.Record) (types.Record, error) {
	updated, err := a.applyUpdate(model, where, change, true)
	if err != nil || len(updated) == 0 {
		return nil, err
	}
	return updated[0], nil
}

// UpdateMany applies change to every matching record and returns them all.
func (a *Adapter) UpdateMany(ctx context.Context, model string, where types.Where, change types.Record) ([]types.Record, error) {
	return a.applyUpdate(model, where, change, false)
}

// applyUpdate mutates matching records in place. firstOnly short-circuits
// after the first match for Update's single-record semantics.
func (a *Adapter) applyUpdate(model string, where types.Where, change types.Record, firstOnly bool) ([]types.Record, error) {
	changeRow, err := a.tr.Input(model, change, transform.ActionUpdate)
	if err != nil {
		return nil, err
	}
	table, match, err := a.compile(model, where)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	var updated []types.Record
	for _, rec := range a.store[table] {
		if !match(rec) {
			continue
		}
		for k, v := range changeRow {
			rec[k] = cloneValue(v)
		}
		updated = append(updated, cloneRecord(rec))
		if firstOnly {
			break
		}
	}
	a.mu.Unlock()

	out := make([]types.Record, 0, len(updated))
	for _, rec := range updated {
		entity, err := a.tr.Output(model, rec, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Delete removes the records matching where.
func (a *Adapter) Delete(ctx context.Context, model string, where types.Where) error {
	_, err := a.DeleteMany(ctx, model, where)
	return err
}

// DeleteMany removes the records matching where and returns how many were
// removed.
func (a *Adapter) DeleteMany(ctx context.Context, model string, where types.Where) (int64, error) {
	table, match, err := a.compile(model, where)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.store[table][:0]
	var removed int64
	for _, rec := range a.store[table] {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	a.store[table] = kept
	return removed, nil
}

// Transaction deep-copies the store, runs fn against an adapter bound to
// the copy, and swaps the copy's record lists into the live store when fn
// succeeds. When fn fails the copy is discarded untouched and the error
// re-propagates, so either every operation in fn is visible or none is.
func (a *Adapter) Transaction(ctx context.Context, fn func(ctx context.Context, tx types.Adapter) error) error {
	a.mu.RLock()
	snapshot := a.store.Clone()
	a.mu.RUnlock()

	scoped := &Adapter{store: snapshot, tr: a.tr, opts: a.opts, log: a.log}
	if err := fn(ctx, scoped); err != nil {
		return err
	}

	a.mu.Lock()
	for table, records := range snapshot {
		a.store[table] = records
	}
	a.mu.Unlock()
	return nil
}

// compile resolves the table and renders the where clause into a predicate
// in one step, since every operation needs both.
func (a *Adapter) compile(model string, where types.Where) (string, func(types.Record) bool, error) {
	table, err := a.tr.TableName(model)
	if err != nil {
		return "", nil, err
	}
	resolved, err := a.tr.ResolveWhere(model, where)
	if err != nil {
		return "", nil, err
	}
	return table, buildPredicate(resolved), nil
}

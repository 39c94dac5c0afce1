// Package memory implements the in-memory storage adapter. It is the
// authoritative reference implementation for the adapter contract: tests
// and development use it, and the SQL adapters must match its observable
// behavior. Lookups are linear scans over unindexed record lists;
// performance is explicitly not a goal here.
package memory

import "github.com/consentbase/consentdb/pkg/types"

// Store maps storage table names to ordered record lists. The store is an
// explicitly owned value passed into New; the adapter closes over it and
// nothing else references it. Transactions deep-copy the whole store and
// swap the copy back in on commit.
type Store map[string][]types.Record

// NewStore returns an empty store.
func NewStore() Store {
	return Store{}
}

// Clone deep-copies the store, including nested maps and slices inside
// record values, so transaction-scoped mutations cannot leak into the
// live store through shared references.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for table, records := range s {
		cloned := make([]types.Record, len(records))
		for i, rec := range records {
			cloned[i] = cloneRecord(rec)
		}
		out[table] = cloned
	}
	return out
}

// cloneRecord deep-copies one record.
func cloneRecord(rec types.Record) types.Record {
	out := make(types.Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies JSON-shaped values (maps and slices); scalars are
// returned as is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

package types

import "context"

// Record is an entity value in its logical shape: field names and types as
// the schema declares them, independent of any backend representation.
type Record map[string]any

// Adapter is the uniform CRUD and transaction contract every storage
// backend implements. Inputs, outputs, and the error taxonomy are identical
// across backends; only the internal translation differs.
//
// FindOne and Update return a nil Record (with a nil error) when no record
// matches. Delete is a no-op when nothing matches; DeleteMany reports how
// many records were removed.
type Adapter interface {
	// Create persists a new record. Input transformation assigns the ID,
	// applies field defaults, and coerces values for the backend. The
	// returned record includes the generated ID. When selectFields is
	// non-empty, only those fields (plus "id" when listed) are returned.
	Create(ctx context.Context, model string, data Record, selectFields ...string) (Record, error)

	// FindOne returns the first record matching where, or nil when none
	// does. Match order is document order for the memory backend and
	// undefined for SQL backends.
	FindOne(ctx context.Context, model string, where Where, selectFields ...string) (Record, error)

	// FindMany returns records matching the query. The offset applies
	// before the limit; an unspecified limit defaults to DefaultLimit.
	FindMany(ctx context.Context, model string, q Query) ([]Record, error)

	// Count returns the number of records matching where.
	Count(ctx context.Context, model string, where Where) (int64, error)

	// Update applies change to every record matching where and returns
	// the first updated record, or nil when none matched. No defaults are
	// applied and no ID is injected.
	Update(ctx context.Context, model string, where Where, change Record) (Record, error)

	// UpdateMany applies change to every record matching where and
	// returns all updated records.
	UpdateMany(ctx context.Context, model string, where Where, change Record) ([]Record, error)

	// Delete removes the records matching where.
	Delete(ctx context.Context, model string, where Where) error

	// DeleteMany removes the records matching where and returns how many
	// were removed.
	DeleteMany(ctx context.Context, model string, where Where) (int64, error)

	// Transaction runs fn against an adapter instance bound to an
	// isolated transactional scope. All operations through that instance
	// commit together when fn returns nil and are discarded when fn
	// returns an error (which re-propagates unchanged). Backends without
	// transaction support fall back to running fn against the
	// non-transactional adapter and log a warning.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Adapter) error) error
}

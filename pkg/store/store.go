// Package store resolves a storage configuration into a concrete adapter
// and provides JSON-lines export/import of a store's contents.
package store

import (
	"context"
	"fmt"

	"github.com/consentbase/consentdb/internal/memory"
	"github.com/consentbase/consentdb/internal/postgres"
	"github.com/consentbase/consentdb/internal/sqlite"
	"github.com/consentbase/consentdb/pkg/types"
)

// Store binds an adapter to whatever connection state it owns.
type Store struct {
	adapter types.Adapter
	opts    types.Options
	closeFn func() error
}

// Open validates cfg and constructs the adapter it selects. The kind is
// resolved through a closed constructor set; unknown kinds fail validation.
func Open(ctx context.Context, cfg types.Config, opts types.Options) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	switch cfg.Kind {
	case types.AdapterMemory:
		return &Store{
			adapter: memory.New(memory.NewStore(), opts),
			opts:    opts,
		}, nil

	case types.AdapterSQL:
		switch cfg.Dialect {
		case types.DialectSQLite:
			db, err := sqlite.Open(ctx, cfg.DSN, opts)
			if err != nil {
				return nil, err
			}
			return &Store{
				adapter: sqlite.New(db, opts, cfg.DisableTransactions),
				opts:    opts,
				closeFn: db.Close,
			}, nil
		case types.DialectPostgres:
			pool, err := postgres.Open(ctx, cfg.DSN, opts)
			if err != nil {
				return nil, err
			}
			return &Store{
				adapter: postgres.New(pool, opts, cfg.DisableTransactions),
				opts:    opts,
				closeFn: func() error { pool.Close(); return nil },
			}, nil
		default:
			return nil, types.ErrDialectUnknown
		}

	case types.AdapterCustom:
		adapter, err := cfg.Factory(opts)
		if err != nil {
			return nil, fmt.Errorf("custom adapter factory: %w", err)
		}
		return &Store{adapter: adapter, opts: opts}, nil

	default:
		return nil, types.ErrKindUnknown
	}
}

// Adapter returns the resolved adapter.
func (s *Store) Adapter() types.Adapter { return s.adapter }

// Options returns the options the adapter was constructed with.
func (s *Store) Options() types.Options { return s.opts }

// Close releases the adapter's connection state. Safe on adapters that
// own none.
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Package integration exercises the storage adapters through their public
// contract: parity between backends, hook pipeline lifecycle, and JSONL
// export/import round trips.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/store"
	"github.com/consentbase/consentdb/pkg/types"
)

// backendCase names one adapter configuration under test.
type backendCase struct {
	name string
	cfg  func(t *testing.T) types.Config
}

// backends lists the adapter configurations every contract test runs
// against.
var backends = []backendCase{
	{
		name: "memory",
		cfg: func(t *testing.T) types.Config {
			return types.Config{Kind: types.AdapterMemory}
		},
	},
	{
		name: "sqlite",
		cfg: func(t *testing.T) types.Config {
			return types.Config{
				Kind:    types.AdapterSQL,
				Dialect: types.DialectSQLite,
				DSN:     filepath.Join(t.TempDir(), "consent.db"),
			}
		},
	},
}

// openBackend opens a store for the given case with the consent schemas
// bound and closes it when the test finishes.
func openBackend(t *testing.T, bc backendCase) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), bc.cfg(t), types.Options{
		Schemas: consent.Schemas(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

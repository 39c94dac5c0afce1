package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/store"
	"github.com/consentbase/consentdb/pkg/types"
)

// TestConsentLifecycle drives a consent from grant to withdrawal through
// the hook pipeline on every backend.
func TestConsentLifecycle(t *testing.T) {
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			s := openBackend(t, bc)

			reg := pipeline.NewRegistry()
			var audits []string
			reg.After(consent.EntityConsent, pipeline.OpCreate,
				func(ctx context.Context, record types.Record) error {
					audits = append(audits, "created "+record["id"].(string))
					return nil
				})
			reg.After(consent.EntityConsent, pipeline.OpUpdate,
				func(ctx context.Context, record types.Record) error {
					audits = append(audits, "updated "+record["id"].(string))
					return nil
				})
			eng := pipeline.NewEngine(s.Adapter(), reg, nil)

			seeded, err := consent.SeedPurposes(ctx, eng)
			require.NoError(t, err)
			assert.Equal(t, 4, seeded)

			subject, err := s.Adapter().Create(ctx, consent.EntitySubject, types.Record{})
			require.NoError(t, err)

			granted, err := eng.CreateWithHooks(ctx, consent.EntityConsent, types.Record{
				"subjectId":  subject["id"],
				"domainId":   "dom_site",
				"purposeIds": []any{"analytics", "marketing"},
			})
			require.NoError(t, err)
			require.NotNil(t, granted)
			assert.Equal(t, consent.StatusActive, granted["status"])
			assert.Equal(t, true, granted["isActive"])
			assert.NotEmpty(t, granted["givenAt"], "givenAt default must apply")

			withdrawn, err := eng.UpdateWithHooks(ctx, consent.EntityConsent,
				types.Where{types.Eq("id", granted["id"])},
				types.Record{
					"status":           consent.StatusWithdrawn,
					"isActive":         false,
					"withdrawalReason": "user request",
				})
			require.NoError(t, err)
			require.NotNil(t, withdrawn)
			assert.Equal(t, consent.StatusWithdrawn, withdrawn["status"])

			active, err := s.Adapter().Count(ctx, consent.EntityConsent,
				types.Where{types.Eq("status", consent.StatusActive)})
			require.NoError(t, err)
			assert.EqualValues(t, 0, active)

			require.Len(t, audits, 2)
			assert.Equal(t, "created "+granted["id"].(string), audits[0])
			assert.Equal(t, "updated "+granted["id"].(string), audits[1])
		})
	}
}

// TestTransactionAtomicity checks that a failing transaction callback
// leaves no partial writes behind on any backend.
func TestTransactionAtomicity(t *testing.T) {
	boom := errors.New("boom")
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			a := openBackend(t, bc).Adapter()

			err := a.Transaction(ctx, func(ctx context.Context, tx types.Adapter) error {
				if _, err := tx.Create(ctx, consent.EntitySubject, types.Record{}); err != nil {
					return err
				}
				if _, err := tx.Create(ctx, consent.EntitySubject, types.Record{}); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			n, err := a.Count(ctx, consent.EntitySubject, nil)
			require.NoError(t, err)
			assert.EqualValues(t, 0, n, "both creates must be discarded")
		})
	}
}

// TestExportImportAcrossBackends exports a populated SQLite store and
// imports it into a memory store, then compares contents.
func TestExportImportAcrossBackends(t *testing.T) {
	ctx := context.Background()
	schemas := consent.Schemas()

	src := openBackend(t, backendCase{
		name: "sqlite",
		cfg: func(t *testing.T) types.Config {
			return types.Config{
				Kind:    types.AdapterSQL,
				Dialect: types.DialectSQLite,
				DSN:     filepath.Join(t.TempDir(), "src.db"),
			}
		},
	})

	eng := pipeline.NewEngine(src.Adapter(), pipeline.NewRegistry(), nil)
	_, err := consent.SeedPurposes(ctx, eng)
	require.NoError(t, err)

	subject, err := src.Adapter().Create(ctx, consent.EntitySubject, types.Record{})
	require.NoError(t, err)
	_, err = src.Adapter().Create(ctx, consent.EntityConsent, types.Record{
		"subjectId": subject["id"],
		"domainId":  "dom_site",
		"metadata":  map[string]any{"source": "banner"},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.jsonl")
	exported, err := store.Export(ctx, src.Adapter(), schemas, path)
	require.NoError(t, err)
	assert.Equal(t, 6, exported, "4 purposes + subject + consent")

	dst := openBackend(t, backendCase{
		name: "memory",
		cfg: func(t *testing.T) types.Config {
			return types.Config{Kind: types.AdapterMemory}
		},
	})
	imported, err := store.Import(ctx, dst.Adapter(), schemas, path)
	require.NoError(t, err)
	assert.Equal(t, exported, imported)

	for _, entity := range schemas.EntityNames() {
		srcN, err := src.Adapter().Count(ctx, entity, nil)
		require.NoError(t, err)
		dstN, err := dst.Adapter().Count(ctx, entity, nil)
		require.NoError(t, err)
		assert.Equal(t, srcN, dstN, "count mismatch for %s", entity)
	}

	kept, err := dst.Adapter().FindOne(ctx, consent.EntitySubject,
		types.Where{types.Eq("id", subject["id"])})
	require.NoError(t, err)
	assert.NotNil(t, kept, "imported records keep their IDs")
}

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/types"
)

// stepOutputs captures what one backend produced at each step of the
// fixed operation sequence.
type stepOutputs struct {
	created   types.Record
	found     types.Record
	updated   types.Record
	afterDel  types.Record
	count     int64
	operators map[string]int64
}

// runSequence drives the fixed sequence create -> findOne -> update ->
// operator queries -> delete -> findOne against one backend.
func runSequence(t *testing.T, bc backendCase) stepOutputs {
	t.Helper()
	ctx := context.Background()
	s := openBackend(t, bc)
	a := s.Adapter()

	var out stepOutputs
	var err error

	givenAt := time.Date(2026, 5, 20, 12, 0, 0, 123456789, time.UTC)
	out.created, err = a.Create(ctx, consent.EntityConsent, types.Record{
		"id":        "cns_parity",
		"subjectId": "sub_parity",
		"domainId":  "dom_parity",
		"givenAt":   givenAt,
		"metadata":  map[string]any{"source": "banner"},
	})
	require.NoError(t, err)

	out.found, err = a.FindOne(ctx, consent.EntityConsent,
		types.Where{types.Eq("id", "cns_parity")})
	require.NoError(t, err)

	out.updated, err = a.Update(ctx, consent.EntityConsent,
		types.Where{types.Eq("id", "cns_parity")},
		types.Record{"status": consent.StatusWithdrawn, "isActive": false})
	require.NoError(t, err)

	out.count, err = a.Count(ctx, consent.EntityConsent,
		types.Where{types.Eq("status", consent.StatusWithdrawn)})
	require.NoError(t, err)

	// Operator semantics must agree across backends.
	out.operators = map[string]int64{}
	for name, where := range map[string]types.Where{
		"in": {{Field: "status", Operator: types.OpIn,
			Value: []any{consent.StatusActive, consent.StatusWithdrawn}}},
		"contains":    {{Field: "subjectId", Operator: types.OpContains, Value: "parity"}},
		"starts_with": {{Field: "subjectId", Operator: types.OpStartsWith, Value: "sub_"}},
		"ends_with":   {{Field: "subjectId", Operator: types.OpEndsWith, Value: "_parity"}},
		"ilike":       {{Field: "status", Operator: types.OpILike, Value: "WITHDRAWN"}},
		"gte":         {{Field: "givenAt", Operator: types.OpGte, Value: givenAt}},
		"lt":          {{Field: "givenAt", Operator: types.OpLt, Value: givenAt}},
	} {
		n, err := a.Count(ctx, consent.EntityConsent, where)
		require.NoError(t, err, "operator %s", name)
		out.operators[name] = n
	}

	err = a.Delete(ctx, consent.EntityConsent, types.Where{types.Eq("id", "cns_parity")})
	require.NoError(t, err)

	out.afterDel, err = a.FindOne(ctx, consent.EntityConsent,
		types.Where{types.Eq("id", "cns_parity")})
	require.NoError(t, err)

	return out
}

func TestAdapterParity(t *testing.T) {
	results := make(map[string]stepOutputs, len(backends))
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			out := runSequence(t, bc)

			assert.Equal(t, "cns_parity", out.created["id"])
			assert.Nil(t, out.afterDel, "record must be gone after delete")
			assert.EqualValues(t, 1, out.count)
			results[bc.name] = out
		})
	}

	mem, sql := results["memory"], results["sqlite"]
	if mem.created == nil || sql.created == nil {
		t.Fatal("one of the backends did not complete the sequence")
	}

	// Structural equality at every step of the sequence.
	assert.Equal(t, mem.created, sql.created, "create outputs differ")
	assert.Equal(t, mem.found, sql.found, "findOne outputs differ")
	assert.Equal(t, mem.updated, sql.updated, "update outputs differ")
	assert.Equal(t, mem.operators, sql.operators, "operator semantics differ")
}

func TestGroupingParityAcrossBackends(t *testing.T) {
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			a := openBackend(t, bc).Adapter()

			// Dataset where only one record satisfies
			// (status=active) AND (domain=a OR domain=b).
			seeds := []struct{ domain, status string }{
				{"dom_a", consent.StatusWithdrawn},
				{"dom_c", consent.StatusActive},
				{"dom_b", consent.StatusActive},
			}
			for _, seed := range seeds {
				_, err := a.Create(ctx, consent.EntityConsent, types.Record{
					"subjectId": "sub_1",
					"domainId":  seed.domain,
					"status":    seed.status,
				})
				require.NoError(t, err)
			}

			got, err := a.FindMany(ctx, consent.EntityConsent, types.Query{
				Where: types.Where{
					{Field: "status", Value: consent.StatusActive},
					{Field: "domainId", Value: "dom_a", Connector: types.ConnectorOr},
					{Field: "domainId", Value: "dom_b", Connector: types.ConnectorOr},
				},
			})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "dom_b", got[0]["domainId"])
		})
	}
}

func TestRequiredFieldGuardAcrossBackends(t *testing.T) {
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			a := openBackend(t, bc).Adapter()
			ctx := context.Background()

			// subjectId is required on consent; the transformer rejects
			// the write before the backend sees it.
			_, err := a.Create(ctx, consent.EntityConsent, types.Record{
				"domainId": "dom_site",
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRequiredField)

			n, err := a.Count(ctx, consent.EntityConsent, nil)
			require.NoError(t, err)
			assert.Zero(t, n, "rejected create must not persist anything")
		})
	}
}

func TestEmptyChangeUpdateAcrossBackends(t *testing.T) {
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			a := openBackend(t, bc).Adapter()
			ctx := context.Background()

			created, err := a.Create(ctx, consent.EntitySubject, types.Record{
				"externalId": "ext_1",
			})
			require.NoError(t, err)

			// An empty change set is a no-op that still returns the
			// matched record.
			updated, err := a.Update(ctx, consent.EntitySubject,
				types.Where{types.Eq("id", created["id"])}, types.Record{})
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, created["id"], updated["id"])
			assert.Equal(t, "ext_1", updated["externalId"])

			many, err := a.UpdateMany(ctx, consent.EntitySubject,
				types.Where{types.Eq("id", created["id"])}, types.Record{})
			require.NoError(t, err)
			require.Len(t, many, 1)

			// No match and an empty change still yields no record.
			missing, err := a.Update(ctx, consent.EntitySubject,
				types.Where{types.Eq("id", "sub_absent")}, types.Record{})
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestInOperatorGuardAcrossBackends(t *testing.T) {
	for _, bc := range backends {
		bc := bc
		t.Run(bc.name, func(t *testing.T) {
			a := openBackend(t, bc).Adapter()
			_, err := a.Count(context.Background(), consent.EntityConsent,
				types.Where{{Field: "status", Operator: types.OpIn, Value: "not-an-array"}})
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidOperator)
		})
	}
}

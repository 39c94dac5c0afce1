package consent

import (
	"context"
	"fmt"

	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/types"
)

// baselinePurpose describes a consent purpose seeded on first run.
type baselinePurpose struct {
	code        string
	name        string
	description string
	isEssential bool
	legalBasis  string
}

// baselinePurposes defines the purposes present in every fresh store.
var baselinePurposes = []baselinePurpose{
	{
		code:        "necessary",
		name:        "Strictly Necessary",
		description: "Required for the site to function; cannot be disabled",
		isEssential: true,
		legalBasis:  "legitimate_interest",
	},
	{
		code:        "functional",
		name:        "Functional",
		description: "Remembers choices such as language and region",
		legalBasis:  "consent",
	},
	{
		code:        "analytics",
		name:        "Analytics",
		description: "Helps understand how visitors use the site",
		legalBasis:  "consent",
	},
	{
		code:        "marketing",
		name:        "Marketing",
		description: "Used to deliver and measure advertising",
		legalBasis:  "consent",
	},
}

// SeedPurposes inserts the baseline consent purposes through the hook
// pipeline. Seeding is idempotent: a purpose whose code already exists is
// left untouched. Returns the number of purposes created.
func SeedPurposes(ctx context.Context, eng *pipeline.Engine) (int, error) {
	created := 0
	for _, p := range baselinePurposes {
		existing, err := eng.Adapter().FindOne(ctx, EntityPurpose,
			types.Where{types.Eq("code", p.code)})
		if err != nil {
			return created, fmt.Errorf("checking purpose %s: %w", p.code, err)
		}
		if existing != nil {
			continue
		}

		record := types.Record{
			"code":        p.code,
			"name":        p.name,
			"description": p.description,
			"isEssential": p.isEssential,
			"legalBasis":  p.legalBasis,
		}
		result, err := eng.CreateWithHooks(ctx, EntityPurpose, record)
		if err != nil {
			return created, fmt.Errorf("seeding purpose %s: %w", p.code, err)
		}
		// A hook abort skips the purpose without failing the seed.
		if result != nil {
			created++
		}
	}
	return created, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consentbase/consentdb/internal/sqlgen"
	"github.com/consentbase/consentdb/pkg/types"
)

// columnType maps a logical field type to its PostgreSQL column type.
func columnType(t types.FieldType) string {
	switch t {
	case types.FieldNumber:
		return "NUMERIC"
	case types.FieldBoolean:
		return "BOOLEAN"
	case types.FieldDate:
		return "TIMESTAMPTZ"
	case types.FieldJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func createTableDDL(schema types.EntitySchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", sqlgen.QuoteIdent(schema.Table()))
	fmt.Fprintf(&b, "  %s TEXT PRIMARY KEY", sqlgen.QuoteIdent("id"))
	for _, f := range schema.Fields {
		fmt.Fprintf(&b, ",\n  %s %s", sqlgen.QuoteIdent(f.Column()), columnType(f.Type))
		if f.Required {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// EnsureSchema creates a table for every registered entity that does not
// already exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, schemas types.SchemaMap) error {
	for _, name := range schemas.EntityNames() {
		schema, err := schemas.Entity(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, createTableDDL(schema)); err != nil {
			return fmt.Errorf("create table %s: %w", schema.Table(), err)
		}
	}
	return nil
}

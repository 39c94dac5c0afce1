package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/consentbase/consentdb/internal/sqlgen"
	"github.com/consentbase/consentdb/pkg/types"
)

// columnType maps a logical field type to its SQLite storage class.
// Booleans store as 0/1, dates as RFC 3339 text, JSON as serialized text;
// the transformer performs the coercion in both directions.
func columnType(t types.FieldType) string {
	switch t {
	case types.FieldNumber:
		return "NUMERIC"
	case types.FieldBoolean:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// createTableDDL renders the CREATE TABLE statement for one entity.
func createTableDDL(schema types.EntitySchema) string {
	var cols []string
	cols = append(cols, fmt.Sprintf("%s TEXT PRIMARY KEY", sqlgen.QuoteIdent("id")))
	for _, f := range schema.Fields {
		col := fmt.Sprintf("%s %s", sqlgen.QuoteIdent(f.Column()), columnType(f.Type))
		if f.Required {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		sqlgen.QuoteIdent(schema.Table()), strings.Join(cols, ",\n    "))
}

// EnsureSchema creates the table for every entity in the schema map.
// Tables that already exist are left untouched; schema migration is out
// of scope.
func EnsureSchema(ctx context.Context, db *sql.DB, schemas types.SchemaMap) error {
	for _, name := range schemas.EntityNames() {
		ddl := createTableDDL(schemas[name])
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating table for entity %s: %w", name, err)
		}
	}
	return nil
}

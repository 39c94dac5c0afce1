// Package sqlgen renders the backend-agnostic query model into SQL text
// with bound arguments. The SQLite and Postgres adapters share one
// renderer; a Dialect supplies the few things that differ between them,
// keeping the grouping and operator semantics in a single place.
package sqlgen

import (
	"fmt"
	"strings"
)

// Dialect abstracts placeholder style and value capabilities per engine.
type Dialect interface {
	// Placeholder returns the bind marker for the n-th argument
	// (1-based).
	Placeholder(n int) string
}

// SQLite uses positional "?" markers.
type SQLite struct{}

// Placeholder returns "?" regardless of position.
func (SQLite) Placeholder(int) string { return "?" }

// Postgres uses numbered "$n" markers.
type Postgres struct{}

// Placeholder returns "$n".
func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuoteIdent quotes an identifier with double quotes, escaping embedded
// quotes. Both supported engines accept this form.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

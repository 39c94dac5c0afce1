package types

import (
	"errors"
	"log/slog"
)

// AdapterKind tags the adapter configuration. The kind is resolved once at
// startup into a concrete Adapter through a closed set of constructors;
// there is no runtime shape-sniffing of connection objects.
type AdapterKind string

// Supported adapter kinds.
const (
	AdapterMemory AdapterKind = "memory"
	AdapterSQL    AdapterKind = "sql"
	AdapterCustom AdapterKind = "custom"
)

// SQLDialect selects the SQL backend for AdapterSQL configurations.
type SQLDialect string

// Supported SQL dialects.
const (
	DialectSQLite   SQLDialect = "sqlite"
	DialectPostgres SQLDialect = "postgres"
)

// Config validation errors.
var (
	ErrKindEmpty      = errors.New("adapter kind must not be empty")
	ErrKindUnknown    = errors.New("unknown adapter kind")
	ErrDialectUnknown = errors.New("unknown sql dialect")
	ErrDSNEmpty       = errors.New("sql adapter requires a dsn")
	ErrFactoryNil     = errors.New("custom adapter requires a factory")
)

// Config selects and parameterizes a storage adapter.
type Config struct {
	// Kind selects the adapter family.
	Kind AdapterKind `json:"kind" yaml:"kind"`

	// Dialect and DSN configure AdapterSQL backends.
	Dialect SQLDialect `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	DSN     string     `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// DisableTransactions makes Transaction run its callback without a
	// transactional scope. The fallback is logged, never silent, since it
	// weakens consistency guarantees.
	DisableTransactions bool `json:"disable_transactions,omitempty" yaml:"disable_transactions,omitempty"`

	// Factory constructs the adapter for AdapterCustom configurations.
	Factory func(opts Options) (Adapter, error) `json:"-" yaml:"-"`
}

// knownDialects lists the dialects Validate accepts.
var knownDialects = map[SQLDialect]bool{
	DialectSQLite:   true,
	DialectPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	switch c.Kind {
	case "":
		return ErrKindEmpty
	case AdapterMemory:
		return nil
	case AdapterSQL:
		if !knownDialects[c.Dialect] {
			return ErrDialectUnknown
		}
		if c.DSN == "" {
			return ErrDSNEmpty
		}
		return nil
	case AdapterCustom:
		if c.Factory == nil {
			return ErrFactoryNil
		}
		return nil
	default:
		return ErrKindUnknown
	}
}

// Options carries the schema map and cross-cutting collaborators every
// adapter constructor binds at creation time. The same options are reused
// when an adapter re-instantiates itself bound to a transaction scope.
type Options struct {
	// Schemas maps logical entity names to their schemas.
	Schemas SchemaMap

	// GenerateID overrides ID generation for created records. When nil,
	// IDs derive from the entity prefix plus a random suffix.
	GenerateID func(model string) string

	// Logger receives diagnostics; it never affects control flow. Nil
	// means slog.Default().
	Logger *slog.Logger
}

// Log returns the configured logger or the process default.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

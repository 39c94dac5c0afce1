package types

// FieldType enumerates the logical types a schema field can carry. Backends
// without native support for a type store a coerced representation (for
// example boolean as 0/1 in SQLite) and decode it back on read.
type FieldType string

// Supported field types.
const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldJSON    FieldType = "json"
)

// Field describes one schema attribute of an entity. Fields are defined at
// startup and never mutated afterward.
type Field struct {
	// Name is the logical field name used by callers.
	Name string

	// StorageName is the column name in the backend. Empty means the
	// logical name is used unchanged.
	StorageName string

	// Type is the logical value type.
	Type FieldType

	// Required marks the field as mandatory on create.
	Required bool

	// DefaultValue is a literal applied on create when the caller omits
	// the field. Ignored when DefaultFunc is set.
	DefaultValue any

	// DefaultFunc generates a default on create when the caller omits the
	// field. Evaluated once per create.
	DefaultFunc func() any
}

// Column returns the storage column name, falling back to the logical name
// when no storage name is configured.
func (f Field) Column() string {
	if f.StorageName != "" {
		return f.StorageName
	}
	return f.Name
}

// HasDefault reports whether the field carries a default value or generator.
func (f Field) HasDefault() bool {
	return f.DefaultFunc != nil || f.DefaultValue != nil
}

// Default resolves the field's default, invoking the generator when one is
// configured. Defaults apply only on create, never on update.
func (f Field) Default() any {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return f.DefaultValue
}

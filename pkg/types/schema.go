package types

import "sort"

// EntitySchema describes one logical entity: its storage table name, the
// prefix used for generated IDs, and its ordered field list. The implicit
// "id" field is not listed; every record always has one.
type EntitySchema struct {
	// EntityName is the logical entity name callers use (e.g. "consent").
	EntityName string

	// StorageName is the backend table/collection name. Empty means the
	// logical name is used unchanged.
	StorageName string

	// Prefix is prepended to generated record IDs (e.g. "cns").
	Prefix string

	// Fields is the ordered field list, excluding "id".
	Fields []Field
}

// Table returns the storage table name, falling back to the logical entity
// name when no storage name is configured.
func (s EntitySchema) Table() string {
	if s.StorageName != "" {
		return s.StorageName
	}
	return s.EntityName
}

// Field looks up a field by logical name.
func (s EntitySchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the logical field names in schema order, with "id"
// first. Used for error diagnostics listing valid alternatives.
func (s EntitySchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields)+1)
	names = append(names, "id")
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// SchemaMap maps logical entity names to their schemas. Loaded once at
// adapter construction time; never mutated afterward.
type SchemaMap map[string]EntitySchema

// Entity resolves a schema by logical entity name. Unknown names fail with
// a SchemaError listing the valid entities.
func (m SchemaMap) Entity(name string) (EntitySchema, error) {
	schema, ok := m[name]
	if !ok {
		return EntitySchema{}, &SchemaError{Entity: name, Valid: m.EntityNames()}
	}
	return schema, nil
}

// EntityNames returns the known entity names in sorted order.
func (m SchemaMap) EntityNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

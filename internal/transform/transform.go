// Package transform implements the bidirectional field-name and type
// mapping between the logical entity model and a backend's storage
// representation. One Transformer serves one adapter instance; backends
// differ only in the Capabilities they declare.
package transform

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/consentbase/consentdb/pkg/types"
)

// Action distinguishes create from update input transformation. Defaults
// and ID assignment happen only on create.
type Action string

// Supported actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Capabilities declares which logical types the backend stores natively.
// A declared capability makes the corresponding coercion a no-op.
type Capabilities struct {
	NativeBooleans bool
	NativeDates    bool
	NativeJSON     bool
}

// Transformer converts records and field references between the logical
// entity shape and one backend's storage shape.
type Transformer struct {
	schemas    types.SchemaMap
	generateID func(model string) string
	caps       Capabilities
}

// New builds a Transformer over the given schema map. generateID may be nil,
// in which case generated IDs derive from the entity prefix plus a UUID v7
// suffix.
func New(schemas types.SchemaMap, generateID func(model string) string, caps Capabilities) *Transformer {
	return &Transformer{schemas: schemas, generateID: generateID, caps: caps}
}

// Schema resolves the schema for a logical entity name.
func (t *Transformer) Schema(model string) (types.EntitySchema, error) {
	return t.schemas.Entity(model)
}

// TableName resolves the storage table name for a logical entity name.
func (t *Transformer) TableName(model string) (string, error) {
	schema, err := t.schemas.Entity(model)
	if err != nil {
		return "", err
	}
	return schema.Table(), nil
}

// FieldName resolves a logical field name to its storage column. "id" is
// always passed through unchanged. Unknown fields fail with a FieldError
// listing the valid alternatives.
func (t *Transformer) FieldName(model, field string) (string, error) {
	if field == "id" {
		return "id", nil
	}
	schema, err := t.schemas.Entity(model)
	if err != nil {
		return "", err
	}
	f, ok := schema.Field(field)
	if !ok {
		return "", &types.FieldError{Entity: model, Field: field, Valid: schema.FieldNames()}
	}
	return f.Column(), nil
}

// Input transforms a logical record into the backend's storage shape.
//
// For ActionCreate it assigns the record ID (a caller-supplied id wins,
// else the configured generator, else prefix plus random suffix; exactly
// one path runs) and applies field defaults for omitted values. For
// ActionUpdate no defaults apply and no ID is injected. Omitted fields
// without a default stay omitted rather than being written as null.
// Required fields that a create would leave absent, or that any write
// would set to null, raise a RequiredError here so every backend rejects
// the input identically.
func (t *Transformer) Input(model string, data types.Record, action Action) (types.Record, error) {
	schema, err := t.schemas.Entity(model)
	if err != nil {
		return nil, err
	}

	for key := range data {
		if key == "id" {
			continue
		}
		if _, ok := schema.Field(key); !ok {
			return nil, &types.FieldError{Entity: model, Field: key, Valid: schema.FieldNames()}
		}
	}

	out := types.Record{}
	if action == ActionCreate {
		out["id"] = t.resolveID(schema, data)
	}

	for _, field := range schema.Fields {
		value, present := data[field.Name]
		if !present {
			if action != ActionCreate {
				continue
			}
			if !field.HasDefault() {
				if field.Required {
					return nil, &types.RequiredError{Entity: model, Field: field.Name}
				}
				continue
			}
			value = field.Default()
		}
		if value == nil && field.Required {
			return nil, &types.RequiredError{Entity: model, Field: field.Name}
		}
		encoded, err := t.encode(model, field, value)
		if err != nil {
			return nil, err
		}
		out[field.Column()] = encoded
	}
	return out, nil
}

// Output transforms a storage row back into the logical record shape,
// applying the inverse type coercion. A nil row yields a nil record. When
// selectFields is non-empty, only the listed fields are copied; "id" is
// copied first and only when listed (or when no selection was given).
func (t *Transformer) Output(model string, row types.Record, selectFields []string) (types.Record, error) {
	if row == nil {
		return nil, nil
	}
	schema, err := t.schemas.Entity(model)
	if err != nil {
		return nil, err
	}

	selected := func(name string) bool {
		if len(selectFields) == 0 {
			return true
		}
		for _, s := range selectFields {
			if s == name {
				return true
			}
		}
		return false
	}

	out := types.Record{}
	if id, ok := row["id"]; ok && selected("id") {
		out["id"] = id
	}
	for _, field := range schema.Fields {
		raw, ok := row[field.Column()]
		if !ok || !selected(field.Name) {
			continue
		}
		decoded, err := t.decode(model, field, raw)
		if err != nil {
			return nil, err
		}
		out[field.Name] = decoded
	}
	return out, nil
}

// CoerceValue encodes a where-clause value the same way stored data is
// encoded, so predicates compare like with like. "id" values pass through.
func (t *Transformer) CoerceValue(model, field string, value any) (any, error) {
	if field == "id" {
		return value, nil
	}
	schema, err := t.schemas.Entity(model)
	if err != nil {
		return nil, err
	}
	f, ok := schema.Field(field)
	if !ok {
		return nil, &types.FieldError{Entity: model, Field: field, Valid: schema.FieldNames()}
	}
	return t.encode(model, f, value)
}

// resolveID picks the record ID for a create. Exactly one of the three
// paths runs: caller-supplied value, configured generator, or entity
// prefix plus a UUID v7 suffix.
func (t *Transformer) resolveID(schema types.EntitySchema, data types.Record) string {
	if v, ok := data["id"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if t.generateID != nil {
		return t.generateID(schema.EntityName)
	}
	suffix := uuid.Must(uuid.NewV7()).String()
	if schema.Prefix != "" {
		return schema.Prefix + "_" + suffix
	}
	return suffix
}

// dateLayout is RFC 3339 with a fixed-width nanosecond fraction. The fixed
// width keeps stored date strings ordered lexicographically the same way
// the times order, and round-trips sub-second precision without loss.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// encode coerces a logical value into the backend representation. Nil
// passes through as the backend null.
func (t *Transformer) encode(model string, field types.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch field.Type {
	case types.FieldBoolean:
		if t.caps.NativeBooleans {
			return value, nil
		}
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field %s.%s: expected bool, got %T: %w",
				model, field.Name, value, types.ErrQuery)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil

	case types.FieldDate:
		if t.caps.NativeDates {
			return value, nil
		}
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(dateLayout), nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("field %s.%s: expected time.Time, got %T: %w",
				model, field.Name, value, types.ErrQuery)
		}

	case types.FieldJSON:
		if t.caps.NativeJSON {
			return value, nil
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: serializing json: %w", model, field.Name, err)
		}
		return string(encoded), nil

	default:
		return value, nil
	}
}

// decode reverses encode for values read back from the backend.
func (t *Transformer) decode(model string, field types.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch field.Type {
	case types.FieldBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case int:
			return v != 0, nil
		case float64:
			return v != 0, nil
		default:
			return nil, fmt.Errorf("field %s.%s: cannot decode %T as bool: %w",
				model, field.Name, value, types.ErrQuery)
		}

	case types.FieldDate:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: parsing date: %w", model, field.Name, err)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("field %s.%s: cannot decode %T as date: %w",
				model, field.Name, value, types.ErrQuery)
		}

	case types.FieldJSON:
		switch v := value.(type) {
		case string:
			var decoded any
			if err := json.Unmarshal([]byte(v), &decoded); err != nil {
				return nil, fmt.Errorf("field %s.%s: parsing json: %w", model, field.Name, err)
			}
			return decoded, nil
		case []byte:
			var decoded any
			if err := json.Unmarshal(v, &decoded); err != nil {
				return nil, fmt.Errorf("field %s.%s: parsing json: %w", model, field.Name, err)
			}
			return decoded, nil
		default:
			// Native JSON backends hand back decoded values already.
			return v, nil
		}

	default:
		if b, ok := value.([]byte); ok && field.Type == types.FieldString {
			return string(b), nil
		}
		return value, nil
	}
}

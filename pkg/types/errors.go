package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds for the storage core. Structured error types below unwrap to
// these sentinels so callers can classify failures with errors.Is.
var (
	// ErrSchemaNotFound indicates a reference to an unknown entity.
	ErrSchemaNotFound = errors.New("entity schema not found")

	// ErrFieldNotFound indicates a reference to an unknown field.
	ErrFieldNotFound = errors.New("field not found")

	// ErrRequiredField matches errors for a required field that is missing
	// or null.
	ErrRequiredField = errors.New("required field missing")

	// ErrInvalidOperator indicates a malformed operator usage, such as a
	// non-slice value for the "in" operator.
	ErrInvalidOperator = errors.New("invalid operator usage")

	// ErrConnection indicates the backend connection failed.
	ErrConnection = errors.New("storage connection failed")

	// ErrQuery indicates the backend rejected or failed a query.
	ErrQuery = errors.New("storage query failed")

	// ErrHookFailure indicates a registered hook failed.
	ErrHookFailure = errors.New("hook failed")
)

// SchemaError reports a reference to an unknown entity, listing the valid
// entity names.
type SchemaError struct {
	Entity string
	Valid  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unknown entity %q (valid entities: %s)",
		e.Entity, strings.Join(e.Valid, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaNotFound }

// FieldError reports a reference to an unknown field of a known entity,
// listing the valid field names.
type FieldError struct {
	Entity string
	Field  string
	Valid  []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("unknown field %q on entity %q (valid fields: %s)",
		e.Field, e.Entity, strings.Join(e.Valid, ", "))
}

func (e *FieldError) Unwrap() error { return ErrFieldNotFound }

// RequiredError reports a required field that a write would leave missing
// or null. Raised before the backend sees the row, so every adapter rejects
// the same input identically instead of surfacing a backend constraint
// error.
type RequiredError struct {
	Entity string
	Field  string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required field %q on entity %q is missing or null", e.Field, e.Entity)
}

func (e *RequiredError) Unwrap() error { return ErrRequiredField }

// OperatorError reports a condition whose value shape does not fit its
// operator, such as a non-slice value for "in".
type OperatorError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %q on field %q: %s", e.Operator, e.Field, e.Reason)
}

func (e *OperatorError) Unwrap() error { return ErrInvalidOperator }

// QueryError wraps a backend failure with the operation and entity it
// occurred on. It unwraps to the underlying backend error and additionally
// matches ErrQuery.
type QueryError struct {
	Op    string
	Model string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Model, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

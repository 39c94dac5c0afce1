// Package types defines the entity schema model, the where-clause DSL, the
// Adapter contract, adapter configuration, and standard error types for the
// consentdb storage core.
//
// Every backend implements the same Adapter interface over the same
// backend-agnostic inputs: entities are described by EntitySchema, filtered
// by Where conditions, and returned as plain Records. A caller can swap one
// adapter for another without changing call sites; only the internal
// translation differs per backend.
package types

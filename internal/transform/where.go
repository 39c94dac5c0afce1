package transform

import (
	"fmt"
	"reflect"

	"github.com/consentbase/consentdb/pkg/types"
)

// ResolvedCondition is one where-clause term after schema resolution and
// value coercion: the storage column, the effective operator and connector,
// and values in the backend representation. Both the memory predicate
// renderer and the SQL renderer consume this form, so the grouping and
// operator semantics live in exactly one place.
type ResolvedCondition struct {
	Column    string
	Operator  types.Operator
	Connector types.Connector

	// Value holds the coerced operand for scalar operators; Values holds
	// the coerced elements for the "in" operator.
	Value  any
	Values []any
}

// ResolveWhere validates and resolves a Where clause against the entity
// schema. Malformed input fails here, eagerly and with a typed error,
// rather than deferring to the backend: unknown fields raise a FieldError,
// an "in" operator with a non-slice value raises an OperatorError, and
// pattern operators require string operands.
func (t *Transformer) ResolveWhere(model string, where types.Where) ([]ResolvedCondition, error) {
	resolved := make([]ResolvedCondition, 0, len(where))
	for _, c := range where {
		op := c.Operator
		if op == "" {
			op = types.OpEq
		}
		connector := c.Connector
		if connector == "" {
			connector = types.ConnectorAnd
		}
		if connector != types.ConnectorAnd && connector != types.ConnectorOr {
			return nil, &types.OperatorError{
				Field: c.Field, Operator: op,
				Reason: fmt.Sprintf("unknown connector %q", c.Connector),
			}
		}

		column, err := t.FieldName(model, c.Field)
		if err != nil {
			return nil, err
		}
		rc := ResolvedCondition{Column: column, Operator: op, Connector: connector}

		switch op {
		case types.OpIn:
			rv := reflect.ValueOf(c.Value)
			if c.Value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				return nil, &types.OperatorError{
					Field: c.Field, Operator: op,
					Reason: fmt.Sprintf("value must be a slice, got %T", c.Value),
				}
			}
			rc.Values = make([]any, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				coerced, err := t.CoerceValue(model, c.Field, rv.Index(i).Interface())
				if err != nil {
					return nil, err
				}
				rc.Values = append(rc.Values, coerced)
			}

		case types.OpContains, types.OpStartsWith, types.OpEndsWith, types.OpILike:
			s, ok := c.Value.(string)
			if !ok {
				return nil, &types.OperatorError{
					Field: c.Field, Operator: op,
					Reason: fmt.Sprintf("value must be a string, got %T", c.Value),
				}
			}
			rc.Value = s

		case types.OpEq, types.OpNe, types.OpLt, types.OpLte, types.OpGt, types.OpGte:
			coerced, err := t.CoerceValue(model, c.Field, c.Value)
			if err != nil {
				return nil, err
			}
			rc.Value = coerced

		default:
			return nil, &types.OperatorError{
				Field: c.Field, Operator: op, Reason: "unknown operator",
			}
		}

		resolved = append(resolved, rc)
	}
	return resolved, nil
}

// SplitGroups partitions resolved conditions into the AND group and the OR
// group. The two groups are conjoined at the top level as
// (AND-group) AND (OR-group); see types.Where for why the grouping is
// deliberately flat.
func SplitGroups(conditions []ResolvedCondition) (andGroup, orGroup []ResolvedCondition) {
	for _, c := range conditions {
		if c.Connector == types.ConnectorOr {
			orGroup = append(orGroup, c)
		} else {
			andGroup = append(andGroup, c)
		}
	}
	return andGroup, orGroup
}

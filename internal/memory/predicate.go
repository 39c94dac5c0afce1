package memory

import (
	"strings"
	"time"

	"github.com/consentbase/consentdb/internal/transform"
	"github.com/consentbase/consentdb/pkg/types"
)

// buildPredicate renders resolved where conditions into a plain match
// function over storage rows. An empty clause matches every record. With
// multiple conditions the AND group and the OR group are conjoined at the
// top level, mirroring the SQL renderer bit for bit.
func buildPredicate(conditions []transform.ResolvedCondition) func(types.Record) bool {
	if len(conditions) == 0 {
		return func(types.Record) bool { return true }
	}
	if len(conditions) == 1 {
		c := conditions[0]
		return func(row types.Record) bool { return matchCondition(c, row) }
	}

	andGroup, orGroup := transform.SplitGroups(conditions)
	return func(row types.Record) bool {
		for _, c := range andGroup {
			if !matchCondition(c, row) {
				return false
			}
		}
		if len(orGroup) == 0 {
			return true
		}
		for _, c := range orGroup {
			if matchCondition(c, row) {
				return true
			}
		}
		return false
	}
}

// matchCondition evaluates one condition against a row. Absent columns
// compare as nil.
func matchCondition(c transform.ResolvedCondition, row types.Record) bool {
	raw := row[c.Column]

	switch c.Operator {
	case types.OpEq:
		return equalValues(raw, c.Value)
	case types.OpNe:
		return !equalValues(raw, c.Value)
	case types.OpLt:
		cmp, ok := compareValues(raw, c.Value)
		return ok && cmp < 0
	case types.OpLte:
		cmp, ok := compareValues(raw, c.Value)
		return ok && cmp <= 0
	case types.OpGt:
		cmp, ok := compareValues(raw, c.Value)
		return ok && cmp > 0
	case types.OpGte:
		cmp, ok := compareValues(raw, c.Value)
		return ok && cmp >= 0
	case types.OpIn:
		for _, v := range c.Values {
			if equalValues(raw, v) {
				return true
			}
		}
		return false
	case types.OpContains:
		s, ok := stringValue(raw)
		return ok && strings.Contains(s, c.Value.(string))
	case types.OpStartsWith:
		s, ok := stringValue(raw)
		return ok && strings.HasPrefix(s, c.Value.(string))
	case types.OpEndsWith:
		s, ok := stringValue(raw)
		return ok && strings.HasSuffix(s, c.Value.(string))
	case types.OpILike:
		s, ok := stringValue(raw)
		return ok && strings.EqualFold(s, c.Value.(string))
	default:
		return false
	}
}

// equalValues compares two values for equality, bridging numeric widths so
// an int filter matches an int64 stored value.
func equalValues(a, b any) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return a == nil && b == nil
}

// compareValues orders two values when they share a comparable domain:
// numbers, strings, or times. The second return is false for everything
// else.
func compareValues(a, b any) (int, bool) {
	if af, ok := floatValue(a); ok {
		bf, ok := floatValue(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// floatValue widens any numeric type to float64.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// stringValue extracts a string operand for the pattern operators.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

package types

// Operator enumerates the comparison operators of the where-clause DSL.
type Operator string

// Supported operators. An empty operator means OpEq.
const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpILike      Operator = "ilike"
)

// Connector joins a condition to the rest of its Where clause.
type Connector string

// Supported connectors. An empty connector means ConnectorAnd.
const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// Condition is one backend-agnostic filter term. Field is a logical field
// name resolved through the entity schema; Value passes through the same
// type coercion as stored data.
type Condition struct {
	Field     string
	Operator  Operator
	Value     any
	Connector Connector
}

// Where is an ordered list of conditions. An empty Where matches every
// record.
//
// Grouping is deliberately flat: conditions with connector AND (or none)
// form one conjunction, conditions with connector OR form one disjunction,
// and the two groups are conjoined at the top level as
// (AND-group) AND (OR-group). This is not a general boolean expression
// tree; more than one OR term cannot be made mutually exclusive from an
// AND term.
type Where []Condition

// Eq builds an equality condition, the most common filter term.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Operator: OpEq, Value: value}
}

// Or returns a copy of the condition joined to its clause with OR.
func (c Condition) Or() Condition {
	c.Connector = ConnectorOr
	return c
}

// SortDirection orders FindMany results.
type SortDirection string

// Supported sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortBy names a logical field to order by and the direction.
type SortBy struct {
	Field     string
	Direction SortDirection
}

// DefaultLimit is applied by FindMany when the caller supplies no limit.
const DefaultLimit = 100

// Query bundles the optional filter, ordering, and pagination of FindMany.
type Query struct {
	Where  Where
	SortBy *SortBy
	Limit  int
	Offset int
}

// EffectiveLimit returns the requested limit or DefaultLimit when none was
// supplied.
func (q Query) EffectiveLimit() int {
	if q.Limit > 0 {
		return q.Limit
	}
	return DefaultLimit
}

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/consentbase/consentdb/internal/transform"
	"github.com/consentbase/consentdb/pkg/types"
)

// Renderer builds SQL statements for one entity schema map and dialect.
type Renderer struct {
	dialect Dialect
	tr      *transform.Transformer
}

// NewRenderer builds a Renderer over the given dialect and transformer.
func NewRenderer(dialect Dialect, tr *transform.Transformer) *Renderer {
	return &Renderer{dialect: dialect, tr: tr}
}

// argList accumulates bound arguments and hands out dialect placeholders.
type argList struct {
	dialect Dialect
	args    []any
}

func (l *argList) add(v any) string {
	l.args = append(l.args, v)
	return l.dialect.Placeholder(len(l.args))
}

// Columns returns the full storage column list of an entity, "id" first,
// in schema order. Adapters select this exact list so row scanning maps
// positionally.
func (r *Renderer) Columns(model string) ([]string, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(schema.Fields)+1)
	cols = append(cols, "id")
	for _, f := range schema.Fields {
		cols = append(cols, f.Column())
	}
	return cols, nil
}

// Insert renders an INSERT for a storage row produced by the input
// transformer. Columns appear in schema order for determinism; only
// columns present in the row are written.
func (r *Renderer) Insert(model string, row types.Record) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}

	list := &argList{dialect: r.dialect}
	var cols, marks []string
	if id, ok := row["id"]; ok {
		cols = append(cols, QuoteIdent("id"))
		marks = append(marks, list.add(id))
	}
	for _, f := range schema.Fields {
		v, ok := row[f.Column()]
		if !ok {
			continue
		}
		cols = append(cols, QuoteIdent(f.Column()))
		marks = append(marks, list.add(v))
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(schema.Table()), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return stmt, list.args, nil
}

// Select renders a SELECT over the entity's full column list with the
// query's filter, ordering, and pagination. The offset applies before the
// limit; an unspecified limit defaults to types.DefaultLimit.
func (r *Renderer) Select(model string, q types.Query) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}
	cols, err := r.Columns(model)
	if err != nil {
		return "", nil, err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdent(c)
	}

	list := &argList{dialect: r.dialect}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(quoted, ", "), QuoteIdent(schema.Table()))

	if err := r.appendWhere(&sb, list, model, q.Where); err != nil {
		return "", nil, err
	}

	if q.SortBy != nil {
		col, err := r.tr.FieldName(model, q.SortBy.Field)
		if err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if q.SortBy.Direction == types.SortDesc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", QuoteIdent(col), dir)
	}

	fmt.Fprintf(&sb, " LIMIT %d", q.EffectiveLimit())
	if q.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.Offset)
	}
	return sb.String(), list.args, nil
}

// SelectIDs renders a SELECT of just the "id" column with the given
// filter. A limit of zero means no limit. SQL adapters use this to pin
// down the affected rows before an UPDATE, so update operations can
// return the records they touched.
func (r *Renderer) SelectIDs(model string, where types.Where, limit int) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}

	list := &argList{dialect: r.dialect}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", QuoteIdent("id"), QuoteIdent(schema.Table()))
	if err := r.appendWhere(&sb, list, model, where); err != nil {
		return "", nil, err
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	return sb.String(), list.args, nil
}

// SelectCount renders a COUNT(*) with the given filter.
func (r *Renderer) SelectCount(model string, where types.Where) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}

	list := &argList{dialect: r.dialect}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s", QuoteIdent(schema.Table()))
	if err := r.appendWhere(&sb, list, model, where); err != nil {
		return "", nil, err
	}
	return sb.String(), list.args, nil
}

// Update renders an UPDATE applying a transformed change row to every
// record matching where.
func (r *Renderer) Update(model string, where types.Where, changeRow types.Record) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}

	list := &argList{dialect: r.dialect}
	var sets []string
	for _, f := range schema.Fields {
		v, ok := changeRow[f.Column()]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", QuoteIdent(f.Column()), list.add(v)))
	}
	if len(sets) == 0 {
		return "", nil, &types.QueryError{Op: "update", Model: model,
			Err: fmt.Errorf("empty change set: %w", types.ErrQuery)}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s", QuoteIdent(schema.Table()), strings.Join(sets, ", "))
	if err := r.appendWhere(&sb, list, model, where); err != nil {
		return "", nil, err
	}
	return sb.String(), list.args, nil
}

// Delete renders a DELETE for every record matching where.
func (r *Renderer) Delete(model string, where types.Where) (string, []any, error) {
	schema, err := r.tr.Schema(model)
	if err != nil {
		return "", nil, err
	}

	list := &argList{dialect: r.dialect}
	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", QuoteIdent(schema.Table()))
	if err := r.appendWhere(&sb, list, model, where); err != nil {
		return "", nil, err
	}
	return sb.String(), list.args, nil
}

// appendWhere resolves and renders the where clause onto sb. An empty
// clause appends nothing and matches all rows.
func (r *Renderer) appendWhere(sb *strings.Builder, list *argList, model string, where types.Where) error {
	resolved, err := r.tr.ResolveWhere(model, where)
	if err != nil {
		return err
	}
	if len(resolved) == 0 {
		return nil
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(r.renderGroups(resolved, list))
	return nil
}

// renderGroups reproduces the flat grouping rule: a single condition
// renders directly; otherwise the AND group and the OR group are each
// parenthesized and conjoined at the top level.
func (r *Renderer) renderGroups(resolved []transform.ResolvedCondition, list *argList) string {
	if len(resolved) == 1 {
		return r.renderCondition(resolved[0], list)
	}

	andGroup, orGroup := transform.SplitGroups(resolved)
	var andParts, orParts []string
	for _, c := range andGroup {
		andParts = append(andParts, r.renderCondition(c, list))
	}
	for _, c := range orGroup {
		orParts = append(orParts, r.renderCondition(c, list))
	}

	switch {
	case len(orParts) == 0:
		return strings.Join(andParts, " AND ")
	case len(andParts) == 0:
		return strings.Join(orParts, " OR ")
	default:
		return fmt.Sprintf("(%s) AND (%s)",
			strings.Join(andParts, " AND "), strings.Join(orParts, " OR "))
	}
}

// renderCondition renders one resolved condition into a SQL predicate.
func (r *Renderer) renderCondition(c transform.ResolvedCondition, list *argList) string {
	col := QuoteIdent(c.Column)
	switch c.Operator {
	case types.OpEq:
		if c.Value == nil {
			return col + " IS NULL"
		}
		return fmt.Sprintf("%s = %s", col, list.add(c.Value))
	case types.OpNe:
		if c.Value == nil {
			return col + " IS NOT NULL"
		}
		return fmt.Sprintf("%s <> %s", col, list.add(c.Value))
	case types.OpLt:
		return fmt.Sprintf("%s < %s", col, list.add(c.Value))
	case types.OpLte:
		return fmt.Sprintf("%s <= %s", col, list.add(c.Value))
	case types.OpGt:
		return fmt.Sprintf("%s > %s", col, list.add(c.Value))
	case types.OpGte:
		return fmt.Sprintf("%s >= %s", col, list.add(c.Value))
	case types.OpIn:
		if len(c.Values) == 0 {
			// An empty list matches nothing.
			return "1 = 0"
		}
		marks := make([]string, len(c.Values))
		for i, v := range c.Values {
			marks[i] = list.add(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(marks, ", "))
	case types.OpContains:
		return fmt.Sprintf("%s LIKE %s", col, list.add("%"+c.Value.(string)+"%"))
	case types.OpStartsWith:
		return fmt.Sprintf("%s LIKE %s", col, list.add(c.Value.(string)+"%"))
	case types.OpEndsWith:
		return fmt.Sprintf("%s LIKE %s", col, list.add("%"+c.Value.(string)))
	case types.OpILike:
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", col, list.add(c.Value))
	default:
		// ResolveWhere rejects unknown operators before rendering.
		return "1 = 0"
	}
}

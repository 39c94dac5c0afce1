// Package sqlite implements the storage adapter over SQLite using the
// pure-Go modernc.org/sqlite driver. SQLite has no native boolean, date,
// or JSON storage, so the transformer coerces those types to 0/1, RFC 3339
// text, and serialized text respectively.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/consentbase/consentdb/internal/sqlgen"
	"github.com/consentbase/consentdb/internal/transform"
	"github.com/consentbase/consentdb/pkg/types"
)

// Compile-time interface check: Adapter must implement types.Adapter.
var _ types.Adapter = (*Adapter)(nil)

// executor is the subset of database/sql shared by *sql.DB and *sql.Tx.
// An adapter bound to a transaction scope carries a *sql.Tx here.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Adapter implements the storage contract over a SQLite database.
type Adapter struct {
	db        *sql.DB // nil when bound to a transaction scope
	exec      executor
	tr        *transform.Transformer
	gen       *sqlgen.Renderer
	opts      types.Options
	log       *slog.Logger
	disableTx bool
}

// Open opens a SQLite database at the given DSN and creates the entity
// tables when missing.
func Open(ctx context.Context, dsn string, opts types.Options) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", types.ErrConnection)
	}
	if err := EnsureSchema(ctx, db, opts.Schemas); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New builds a SQLite adapter over an open database handle.
func New(db *sql.DB, opts types.Options, disableTx bool) *Adapter {
	tr := transform.New(opts.Schemas, opts.GenerateID, transform.Capabilities{})
	return &Adapter{
		db:        db,
		exec:      db,
		tr:        tr,
		gen:       sqlgen.NewRenderer(sqlgen.SQLite{}, tr),
		opts:      opts,
		log:       opts.Log(),
		disableTx: disableTx,
	}
}

// Create persists a new record and returns it, including the assigned ID.
func (a *Adapter) Create(ctx context.Context, model string, data types.Record, selectFields ...string) (types.Record, error) {
	row, err := a.tr.Input(model, data, transform.ActionCreate)
	if err != nil {
		return nil, err
	}
	stmt, args, err := a.gen.Insert(model, row)
	if err != nil {
		return nil, err
	}
	if _, err := a.exec.ExecContext(ctx, stmt, args...); err != nil {
		return nil, &types.QueryError{Op: "create", Model: model, Err: err}
	}
	return a.tr.Output(model, row, selectFields)
}

// FindOne returns the first record matching where, or nil when none does.
// Row order is engine-dependent without an ORDER BY.
func (a *Adapter) FindOne(ctx context.Context, model string, where types.Where, selectFields ...string) (types.Record, error) {
	rows, err := a.queryRows(ctx, model, types.Query{Where: where, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return a.tr.Output(model, rows[0], selectFields)
}

// FindMany returns records matching the query.
func (a *Adapter) FindMany(ctx context.Context, model string, q types.Query) ([]types.Record, error) {
	rows, err := a.queryRows(ctx, model, q)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		entity, err := a.tr.Output(model, row, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of records matching where.
func (a *Adapter) Count(ctx context.Context, model string, where types.Where) (int64, error) {
	stmt, args, err := a.gen.SelectCount(model, where)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := a.exec.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, &types.QueryError{Op: "count", Model: model, Err: err}
	}
	return n, nil
}

// Update applies change to the first record matching where and returns it,
// or nil when nothing matched.
func (a *Adapter) Update(ctx context.Context, model string, where types.Where, change types.Record) (types.Record, error) {
	updated, err := a.updateByIDs(ctx, model, where, change, 1)
	if err != nil || len(updated) == 0 {
		return nil, err
	}
	return updated[0], nil
}

// UpdateMany applies change to every record matching where and returns
// them all.
func (a *Adapter) UpdateMany(ctx context.Context, model string, where types.Where, change types.Record) ([]types.Record, error) {
	return a.updateByIDs(ctx, model, where, change, 0)
}

// updateByIDs pins down the matching row IDs first, updates exactly those
// rows, then reads them back, so Update can honor first-match semantics
// and both variants can return the records they touched.
func (a *Adapter) updateByIDs(ctx context.Context, model string, where types.Where, change types.Record, limit int) ([]types.Record, error) {
	ids, err := a.matchIDs(ctx, model, where, limit)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	idWhere := types.Where{{Field: "id", Operator: types.OpIn, Value: ids}}
	changeRow, err := a.tr.Input(model, change, transform.ActionUpdate)
	if err != nil {
		return nil, err
	}
	// An empty change is a no-op: return the matched records unchanged,
	// the same as the memory adapter.
	if len(changeRow) == 0 {
		return a.FindMany(ctx, model, types.Query{Where: idWhere, Limit: len(ids)})
	}
	stmt, args, err := a.gen.Update(model, idWhere, changeRow)
	if err != nil {
		return nil, err
	}
	if _, err := a.exec.ExecContext(ctx, stmt, args...); err != nil {
		return nil, &types.QueryError{Op: "update", Model: model, Err: err}
	}

	return a.FindMany(ctx, model, types.Query{Where: idWhere, Limit: len(ids)})
}

// Delete removes the records matching where.
func (a *Adapter) Delete(ctx context.Context, model string, where types.Where) error {
	_, err := a.DeleteMany(ctx, model, where)
	return err
}

// DeleteMany removes the records matching where and returns how many were
// removed.
func (a *Adapter) DeleteMany(ctx context.Context, model string, where types.Where) (int64, error) {
	stmt, args, err := a.gen.Delete(model, where)
	if err != nil {
		return 0, err
	}
	res, err := a.exec.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, &types.QueryError{Op: "delete", Model: model, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &types.QueryError{Op: "delete", Model: model, Err: err}
	}
	return n, nil
}

// Transaction runs fn against an adapter bound to a database transaction.
// With transactions disabled by configuration, fn runs against this
// adapter directly and the weakened guarantee is logged. A nested call
// inside a transaction scope reuses the same scope.
func (a *Adapter) Transaction(ctx context.Context, fn func(ctx context.Context, tx types.Adapter) error) error {
	if a.disableTx {
		a.log.Warn("transactions disabled by configuration; running callback without atomicity",
			"adapter", "sqlite")
		return fn(ctx, a)
	}
	if a.db == nil {
		return fn(ctx, a)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.QueryError{Op: "transaction", Model: "", Err: err}
	}
	scoped := &Adapter{
		exec: tx,
		tr:   a.tr,
		gen:  a.gen,
		opts: a.opts,
		log:  a.log,
	}
	if err := fn(ctx, scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			a.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &types.QueryError{Op: "transaction", Model: "", Err: err}
	}
	return nil
}

// matchIDs returns the IDs of the rows matching where, capped at limit
// when it is positive.
func (a *Adapter) matchIDs(ctx context.Context, model string, where types.Where, limit int) ([]string, error) {
	stmt, args, err := a.gen.SelectIDs(model, where, limit)
	if err != nil {
		return nil, err
	}
	rows, err := a.exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &types.QueryError{Op: "select", Model: model, Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &types.QueryError{Op: "select", Model: model, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: "select", Model: model, Err: err}
	}
	return ids, nil
}

// queryRows runs a SELECT over the entity's full column list and scans
// each row into a storage-shaped record.
func (a *Adapter) queryRows(ctx context.Context, model string, q types.Query) ([]types.Record, error) {
	cols, err := a.gen.Columns(model)
	if err != nil {
		return nil, err
	}
	stmt, args, err := a.gen.Select(model, q)
	if err != nil {
		return nil, err
	}

	rows, err := a.exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &types.QueryError{Op: "select", Model: model, Err: err}
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &types.QueryError{Op: "select", Model: model, Err: err}
		}
		row := make(types.Record, len(cols))
		for i, col := range cols {
			// NULL columns stay absent so outputs match what was written.
			if vals[i] == nil {
				continue
			}
			if v, ok := vals[i].([]byte); ok {
				row[col] = string(v)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: "select", Model: model, Err: err}
	}
	return out, nil
}

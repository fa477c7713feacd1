// Package store is the relational side of the read-through caches.
//
// Every query has an explicit row type; rows are converted to records by the
// callers. Missing rows are reported as absent, never as errors, and every
// driver failure is wrapped as an external error.
package store

import (
	"context"
	"database/sql"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"
)

// SelectCriteria narrows a select query.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// Lookup loads rows by primary id.
type Lookup[R any] interface {
	// GetByID returns the row with id, or false when there is none.
	GetByID(ctx context.Context, id uint32) (R, bool, error)
	// GetByIDs returns the rows matching ids, in no particular order.
	GetByIDs(ctx context.Context, ids []uint32) ([]R, error)
}

// Open connects to a postgres ("postgres") or sqlite ("sqlite") database.
func Open(driver, dsn string) (*bun.DB, error) {
	var dialect schema.Dialect
	switch driver {
	case "postgres":
		dialect = pgdialect.New()
	case "sqlite":
		dialect = sqlitedialect.New()
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported database driver %q", driver), goerrors.CategoryValidation)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "open database")
	}
	return bun.NewDB(sqldb, dialect), nil
}

// Table implements Lookup over one row type.
type Table[R any] struct {
	db       bun.IDB
	idColumn string
	criteria []SelectCriteria
}

// NewTable returns a Lookup keyed by idColumn (qualified with the table
// alias, e.g. "s.subject_id"). criteria apply to every query, which is
// where store-level exclusions such as bans go.
func NewTable[R any](db bun.IDB, idColumn string, criteria ...SelectCriteria) *Table[R] {
	return &Table[R]{db: db, idColumn: idColumn, criteria: criteria}
}

func (t *Table[R]) GetByID(ctx context.Context, id uint32) (R, bool, error) {
	var row R
	q := t.db.NewSelect().Model(&row).Where("? = ?", bun.Ident(t.idColumn), id)
	err := t.apply(q).Limit(1).Scan(ctx)
	if goerrors.Is(err, sql.ErrNoRows) {
		var zero R
		return zero, false, nil
	}
	if err != nil {
		var zero R
		return zero, false, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("get %T %d", row, id))
	}
	return row, true, nil
}

func (t *Table[R]) GetByIDs(ctx context.Context, ids []uint32) ([]R, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []R
	q := t.db.NewSelect().Model(&rows).Where("? IN (?)", bun.Ident(t.idColumn), bun.In(ids))
	if err := t.apply(q).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("get %T by %d ids", rows, len(ids)))
	}
	return rows, nil
}

func (t *Table[R]) apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range t.criteria {
		q = c(q)
	}
	return q
}

// Where returns criteria adding a raw predicate.
func Where(query string, args ...interface{}) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	}
}

// Relation returns criteria loading a relation of the row.
func Relation(name string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation(name)
	}
}

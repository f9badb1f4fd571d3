// Package store provides the generic persistence layer behind the resource
// handler factory. One Store implementation serves every resource type; a
// Descriptor tells it which table, columns and query parameters a resource
// exposes, so nothing is resolved by reflection at request time.
package store

import (
	"context"
	"net/url"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/query"
)

const dialect = "mysql"

// Descriptor describes how one resource type maps onto its table.
//
//	Name       – singular resource name used in error messages.
//	Table      – table name.
//	Columns    – default projection (internal columns stay out of it).
//	Queryable  – exposed parameter name -> column; the allow-list for the
//	             filter, sort and fields stages.
//	Base       – predicates applied to every read (e.g. secret = 0).
//	DefaultOrder – deterministic order used when no sort is requested.
type Descriptor struct {
	Name         string
	Table        string
	Columns      []string
	Queryable    map[string]string
	Base         []goqu.Expression
	DefaultOrder []exp.OrderedExpression
}

// Store executes the five generic operations for a single resource type.
type Store[T any] struct {
	db *sqlx.DB
	d  Descriptor
}

// New builds a store from a database handle and a resource descriptor.
func New[T any](db *sqlx.DB, d Descriptor) *Store[T] {
	return &Store[T]{db: db, d: d}
}

// base returns the dataset every read starts from: the table, the default
// projection and the standing predicates.
func (s *Store[T]) base() *goqu.SelectDataset {
	ds := goqu.Dialect(dialect).From(s.d.Table).Prepared(true).Select(anyColumns(s.d.Columns)...)
	if len(s.d.Base) > 0 {
		ds = ds.Where(s.d.Base...)
	}
	return ds
}

// List runs the full feature chain over the raw request parameters and
// returns the matching page. A page past the end of the collection comes
// back empty; only a malformed parameter set is an error.
func (s *Store[T]) List(ctx context.Context, params url.Values) ([]T, error) {
	ds, err := query.New(s.base(), params, s.d.Queryable, s.d.DefaultOrder).
		Filter().
		Sort().
		Fields().
		Paginate().
		Dataset()
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := s.db.SelectContext(ctx, &out, sqlStr, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single record by primary key, honoring the standing
// predicates so hidden records read as missing.
func (s *Store[T]) Get(ctx context.Context, id uint64) (T, error) {
	var out T
	sqlStr, args, err := s.base().Where(goqu.C("id").Eq(id)).Limit(1).ToSQL()
	if err != nil {
		return out, err
	}
	if err := s.db.GetContext(ctx, &out, sqlStr, args...); err != nil {
		return out, apperr.FromDB(err, "no "+s.d.Name+" found with that ID", s.d.Name+" already exists")
	}
	return out, nil
}

// Insert writes a validated record and returns the stored row. Duplicate
// unique keys surface as a conflict.
func (s *Store[T]) Insert(ctx context.Context, rec goqu.Record) (T, error) {
	var out T
	sqlStr, args, err := goqu.Dialect(dialect).Insert(s.d.Table).Prepared(true).Rows(rec).ToSQL()
	if err != nil {
		return out, err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return out, apperr.FromDB(err, "no "+s.d.Name+" found with that ID", s.d.Name+" already exists")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return out, err
	}
	return s.Get(ctx, uint64(id))
}

// Update applies a partial update and returns the post-update state. The
// record is fetched first so a vanished row reads as NotFound even when the
// update itself would touch zero rows.
func (s *Store[T]) Update(ctx context.Context, id uint64, rec goqu.Record) (T, error) {
	var out T
	if _, err := s.Get(ctx, id); err != nil {
		return out, err
	}
	sqlStr, args, err := goqu.Dialect(dialect).Update(s.d.Table).Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return out, err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return out, apperr.FromDB(err, "no "+s.d.Name+" found with that ID", s.d.Name+" already exists")
	}
	return s.Get(ctx, id)
}

// Delete physically removes a record; deleting a missing key is NotFound.
func (s *Store[T]) Delete(ctx context.Context, id uint64) error {
	sqlStr, args, err := goqu.Dialect(dialect).Delete(s.d.Table).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("no " + s.d.Name + " found with that ID")
	}
	return nil
}

func anyColumns(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

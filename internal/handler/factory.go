package handler

// The handler factory builds the five generic CRUD handlers for any
// resource type. A resource plugs in through two capabilities: a Collection
// (persistence, usually *store.Store[T]) and a Binder (request parsing plus
// validation). Lifecycle steps that used to hide in data-model hooks are
// explicit here: a Binder may hand back a Hook to run after the write, and
// DeleteOne accepts hooks that see the record as it was before deletion.

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

const dbTimeout = 5 * time.Second

// Collection is the persistence capability a resource must provide.
type Collection[T any] interface {
	List(ctx context.Context, params url.Values) ([]T, error)
	Get(ctx context.Context, id uint64) (T, error)
	Insert(ctx context.Context, rec goqu.Record) (T, error)
	Update(ctx context.Context, id uint64, rec goqu.Record) (T, error)
	Delete(ctx context.Context, id uint64) error
}

// Hook is a follow-up step run after a write, with the written (or, for
// deletes, the pre-deletion) record.
type Hook[T any] func(ctx context.Context, rec T) error

// Binder parses and validates a request body into an insert/update record.
// partial marks update requests, where absent fields simply stay untouched.
// The returned Hook (may be nil) runs after the write succeeds.
type Binder[T any] func(c echo.Context, partial bool) (goqu.Record, Hook[T], error)

// List handles GET /<resource>: the full feature chain (filter, sort,
// fields, pagination) applied to the collection.
func List[T any](col Collection[T], plural string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()

		items, err := col.List(ctx, c.QueryParams())
		if err != nil {
			return err
		}
		return respondList(c, 200, plural, len(items), items)
	}
}

// GetOne handles GET /<resource>/:id. expand, when non-nil, loads related
// resources into the record before it is returned.
func GetOne[T any](col Collection[T], singular string, expand func(ctx context.Context, rec *T) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()

		rec, err := col.Get(ctx, id)
		if err != nil {
			return err
		}
		if expand != nil {
			if err := expand(ctx, &rec); err != nil {
				return err
			}
		}
		return respondData(c, 200, singular, rec)
	}
}

// CreateOne handles POST /<resource>.
func CreateOne[T any](col Collection[T], singular string, bind Binder[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, after, err := bind(c, false)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()

		created, err := col.Insert(ctx, rec)
		if err != nil {
			return err
		}
		if after != nil {
			if err := after(ctx, created); err != nil {
				return err
			}
		}
		return respondData(c, 201, singular, created)
	}
}

// UpdateOne handles PATCH /<resource>/:id and returns the post-update state.
func UpdateOne[T any](col Collection[T], singular string, bind Binder[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rec, after, err := bind(c, true)
		if err != nil {
			return err
		}
		if len(rec) == 0 {
			return apperr.Validation("nothing to update")
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()

		updated, err := col.Update(ctx, id, rec)
		if err != nil {
			return err
		}
		if after != nil {
			if err := after(ctx, updated); err != nil {
				return err
			}
		}
		return respondData(c, 200, singular, updated)
	}
}

// DeleteOne handles DELETE /<resource>/:id. The record is fetched before
// deletion so hooks can see what was removed (the rating recompute needs
// the parent id of a deleted review).
func DeleteOne[T any](col Collection[T], singular string, after ...Hook[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()

		rec, err := col.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := col.Delete(ctx, id); err != nil {
			return err
		}
		for _, hook := range after {
			if err := hook(ctx, rec); err != nil {
				return err
			}
		}
		return c.NoContent(204)
	}
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id: " + c.Param("id"))
	}
	return id, nil
}

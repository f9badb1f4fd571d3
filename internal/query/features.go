// Package query turns raw list-request parameters into a fully specified
// SQL execution plan. The four stages (filter, sort, field projection,
// pagination) each refine the same goqu dataset, so callers can chain them
// in any order and hand the result to the storage layer unchanged.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

// DefaultLimit is the page size applied when the request carries none.
const DefaultLimit = 100

// Reserved control parameters. They steer the plan and are never treated
// as filter candidates.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// comparison suffixes accepted inside brackets, e.g. price[gte]=500.
var operators = map[string]func(exp.IdentifierExpression, any) goqu.Expression{
	"gte": func(c exp.IdentifierExpression, v any) goqu.Expression { return c.Gte(v) },
	"gt":  func(c exp.IdentifierExpression, v any) goqu.Expression { return c.Gt(v) },
	"lte": func(c exp.IdentifierExpression, v any) goqu.Expression { return c.Lte(v) },
	"lt":  func(c exp.IdentifierExpression, v any) goqu.Expression { return c.Lt(v) },
}

// Features carries a dataset through the refinement stages. The allowed map
// translates exposed parameter names into column identifiers; anything not
// in it is rejected rather than silently passed to the database.
type Features struct {
	ds           *goqu.SelectDataset
	values       url.Values
	allowed      map[string]string
	defaultOrder []exp.OrderedExpression
	err          error
}

// New starts a plan from a base dataset and the raw request parameters.
func New(ds *goqu.SelectDataset, values url.Values, allowed map[string]string, defaultOrder []exp.OrderedExpression) *Features {
	return &Features{ds: ds, values: values, allowed: allowed, defaultOrder: defaultOrder}
}

// Filter translates every non-reserved parameter into a comparison
// predicate. A bare key means equality; a bracketed suffix selects the
// comparison operator. All predicates combine with AND.
func (f *Features) Filter() *Features {
	if f.err != nil {
		return f
	}
	for key, vals := range f.values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		name, op := splitOperator(key)
		col, ok := f.allowed[name]
		if !ok {
			f.err = apperr.Validation("cannot filter on field: " + name)
			return f
		}
		val := coerce(vals[0])
		if op == "" {
			f.ds = f.ds.Where(goqu.C(col).Eq(val))
			continue
		}
		build, ok := operators[op]
		if !ok {
			f.err = apperr.Validation("unknown filter operator: " + op)
			return f
		}
		f.ds = f.ds.Where(build(goqu.C(col), val))
	}
	return f
}

// Sort applies the comma-separated sort list; a leading '-' marks a field
// as descending. Without a sort parameter the default order is used so
// pagination stays deterministic.
func (f *Features) Sort() *Features {
	if f.err != nil {
		return f
	}
	raw := strings.TrimSpace(f.values.Get("sort"))
	if raw == "" {
		f.ds = f.ds.Order(f.defaultOrder...)
		return f
	}
	var order []exp.OrderedExpression
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		col, ok := f.allowed[name]
		if !ok {
			f.err = apperr.Validation("cannot sort on field: " + name)
			return f
		}
		if desc {
			order = append(order, goqu.C(col).Desc())
		} else {
			order = append(order, goqu.C(col).Asc())
		}
	}
	if len(order) == 0 {
		order = f.defaultOrder
	}
	f.ds = f.ds.Order(order...)
	return f
}

// Fields narrows the projection to the requested comma-separated allow-list.
// Without a fields parameter the dataset keeps the selection it came with,
// which already excludes internal columns.
func (f *Features) Fields() *Features {
	if f.err != nil {
		return f
	}
	raw := strings.TrimSpace(f.values.Get("fields"))
	if raw == "" {
		return f
	}
	var cols []any
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, ok := f.allowed[part]
		if !ok {
			f.err = apperr.Validation("cannot select field: " + part)
			return f
		}
		cols = append(cols, col)
	}
	if len(cols) > 0 {
		f.ds = f.ds.Select(cols...)
	}
	return f
}

// Paginate computes LIMIT/OFFSET from page and limit. Pages beyond the
// available rows yield an empty result, never an error.
func (f *Features) Paginate() *Features {
	if f.err != nil {
		return f
	}
	page := positiveInt(f.values.Get("page"), 1)
	limit := positiveInt(f.values.Get("limit"), DefaultLimit)
	offset := (page - 1) * limit
	f.ds = f.ds.Limit(uint(limit)).Offset(uint(offset))
	return f
}

// Dataset returns the refined dataset or the first stage error.
func (f *Features) Dataset() (*goqu.SelectDataset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

// splitOperator separates "price[gte]" into ("price", "gte"). A key without
// brackets comes back with an empty operator.
func splitOperator(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

// coerce turns numeric-looking values into float64 so comparisons against
// numeric columns bind with the right type; everything else stays a string.
func coerce(s string) any {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

package store

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Resource descriptors. The Queryable maps double as the allow-lists for
// the filter, sort and fields stages, so a request can only ever touch
// columns listed here. Credential and bookkeeping columns stay out of the
// projections entirely.

// Tours describes the tours table. Secret tours are filtered by the base
// predicate so they never surface through the generic reads.
func Tours() Descriptor {
	return Descriptor{
		Name:  "tour",
		Table: "tours",
		Columns: []string{
			"id", "name", "slug", "duration", "max_group_size", "difficulty",
			"ratings_average", "ratings_quantity", "price", "price_discount",
			"summary", "description", "image_cover", "start_lat", "start_lng",
			"start_address", "start_description", "created_at", "updated_at",
		},
		Queryable: map[string]string{
			"name":             "name",
			"slug":             "slug",
			"duration":         "duration",
			"max_group_size":   "max_group_size",
			"difficulty":       "difficulty",
			"ratings_average":  "ratings_average",
			"ratings_quantity": "ratings_quantity",
			"price":            "price",
			"summary":          "summary",
			"created_at":       "created_at",
		},
		Base:         []goqu.Expression{goqu.C("secret").Eq(0)},
		DefaultOrder: []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("id").Desc()},
	}
}

// Users describes the users table as exposed to administrators: the
// projection is sanitized and soft-deleted accounts are invisible.
func Users() Descriptor {
	return Descriptor{
		Name:    "user",
		Table:   "users",
		Columns: []string{"id", "name", "email", "photo", "role", "created_at", "updated_at"},
		Queryable: map[string]string{
			"name":       "name",
			"email":      "email",
			"role":       "role",
			"created_at": "created_at",
		},
		Base:         []goqu.Expression{goqu.C("active").Eq(1)},
		DefaultOrder: []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("id").Desc()},
	}
}

// Reviews describes the reviews table. tour_id is queryable so the nested
// route can scope a listing to one tour with a plain filter.
func Reviews() Descriptor {
	return Descriptor{
		Name:    "review",
		Table:   "reviews",
		Columns: []string{"id", "body", "rating", "tour_id", "user_id", "created_at"},
		Queryable: map[string]string{
			"rating":     "rating",
			"tour_id":    "tour_id",
			"user_id":    "user_id",
			"created_at": "created_at",
		},
		DefaultOrder: []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("id").Desc()},
	}
}

package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/stretchr/testify/require"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

var testAllowed = map[string]string{
	"name":            "name",
	"price":           "price",
	"duration":        "duration",
	"difficulty":      "difficulty",
	"ratings_average": "ratings_average",
	"created_at":      "created_at",
}

var testOrder = []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("id").Desc()}

func testDataset() *goqu.SelectDataset {
	return goqu.Dialect("mysql").From("tours").Select("id", "name", "price")
}

func buildSQL(t *testing.T, rawQuery string) string {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	ds, err := New(testDataset(), values, testAllowed, testOrder).
		Filter().Sort().Fields().Paginate().Dataset()
	require.NoError(t, err)

	sqlStr, _, err := ds.ToSQL()
	require.NoError(t, err)
	return sqlStr
}

func buildErr(t *testing.T, rawQuery string) error {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	_, err = New(testDataset(), values, testAllowed, testOrder).
		Filter().Sort().Fields().Paginate().Dataset()
	return err
}

func TestFilterEquality(t *testing.T) {
	sqlStr := buildSQL(t, "difficulty=easy")
	require.Contains(t, sqlStr, "`difficulty` = 'easy'")
}

func TestFilterOperators(t *testing.T) {
	for param, fragment := range map[string]string{
		"price[gte]=500":    "`price` >= 500",
		"price[gt]=500":     "`price` > 500",
		"duration[lte]=10":  "`duration` <= 10",
		"duration[lt]=10":   "`duration` < 10",
	} {
		require.Contains(t, buildSQL(t, param), fragment, param)
	}
}

func TestFilterCombinesWithAnd(t *testing.T) {
	sqlStr := buildSQL(t, "difficulty=easy&price[lte]=1000")
	require.Contains(t, sqlStr, "`difficulty` = 'easy'")
	require.Contains(t, sqlStr, "`price` <= 1000")
}

func TestFilterRejectsUnknownField(t *testing.T) {
	err := buildErr(t, "password_hash=x")
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, 400, ae.Code)
	require.Contains(t, ae.Message, "cannot filter on field")
}

func TestFilterRejectsUnknownOperator(t *testing.T) {
	err := buildErr(t, "price[between]=1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown filter operator")
}

func TestReservedParamsAreNotFilters(t *testing.T) {
	sqlStr := buildSQL(t, "page=2&limit=5&sort=price&fields=name")
	require.NotContains(t, sqlStr, "`page`")
	require.NotContains(t, sqlStr, "`limit`")
}

func TestSortDescending(t *testing.T) {
	sqlStr := buildSQL(t, "sort=-ratings_average,price")
	require.Contains(t, sqlStr, "ORDER BY `ratings_average` DESC, `price` ASC")
}

func TestSortDefaultsWhenAbsent(t *testing.T) {
	sqlStr := buildSQL(t, "")
	require.Contains(t, sqlStr, "ORDER BY `created_at` DESC, `id` DESC")
}

func TestSortRejectsUnknownField(t *testing.T) {
	err := buildErr(t, "sort=secret")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot sort on field")
}

func TestFieldsNarrowsProjection(t *testing.T) {
	sqlStr := buildSQL(t, "fields=name,price")
	require.True(t, strings.HasPrefix(sqlStr, "SELECT `name`, `price` FROM"), sqlStr)
}

func TestFieldsRejectsUnknownField(t *testing.T) {
	err := buildErr(t, "fields=password_hash")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot select field")
}

func TestPaginateDefaults(t *testing.T) {
	sqlStr := buildSQL(t, "")
	require.Contains(t, sqlStr, "LIMIT 100")
	require.NotContains(t, sqlStr, "OFFSET")
}

func TestPaginateOffsets(t *testing.T) {
	require.Contains(t, buildSQL(t, "page=2&limit=5"), "LIMIT 5 OFFSET 5")
	require.Contains(t, buildSQL(t, "page=3&limit=10"), "LIMIT 10 OFFSET 20")
}

func TestPaginateIgnoresGarbage(t *testing.T) {
	sqlStr := buildSQL(t, "page=zero&limit=-3")
	require.Contains(t, sqlStr, "LIMIT 100")
	require.NotContains(t, sqlStr, "OFFSET")
}

func TestSplitOperator(t *testing.T) {
	for key, want := range map[string][2]string{
		"price":       {"price", ""},
		"price[gte]":  {"price", "gte"},
		"[gte]":       {"[gte]", ""},
		"price[gte":   {"price[gte", ""},
	} {
		name, op := splitOperator(key)
		require.Equal(t, want[0], name, key)
		require.Equal(t, want[1], op, key)
	}
}

func TestCoerce(t *testing.T) {
	require.Equal(t, 500.0, coerce("500"))
	require.Equal(t, 4.5, coerce("4.5"))
	require.Equal(t, "easy", coerce("easy"))
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

func TestSlugify(t *testing.T) {
	for name, want := range map[string]string{
		"The Forest Hiker":     "the-forest-hiker",
		"  Sea  Explorer  ":    "sea-explorer",
		"Tour #5: Best Value!": "tour-5-best-value",
	} {
		require.Equal(t, want, slugify(name))
	}
}

func TestParseLatLng(t *testing.T) {
	lat, lng, err := parseLatLng("34.111745,-118.113491")
	require.NoError(t, err)
	require.InDelta(t, 34.111745, lat, 1e-9)
	require.InDelta(t, -118.113491, lng, 1e-9)

	for _, raw := range []string{"", "34.1", "34.1,-118.1,7", "abc,-118.1", "95,-118.1", "34.1,190"} {
		_, _, err := parseLatLng(raw)
		require.Error(t, err, raw)
	}
}

func TestParseUnit(t *testing.T) {
	for _, unit := range []string{"mi", "km"} {
		got, err := parseUnit(unit)
		require.NoError(t, err)
		require.Equal(t, unit, got)
	}
	_, err := parseUnit("furlong")
	require.Error(t, err)
}

func TestAliasTopTours(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/top-5-cheap?limit=50", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var q map[string][]string
	next := func(c echo.Context) error {
		q = c.QueryParams()
		return nil
	}
	require.NoError(t, AliasTopTours(next)(c))
	require.Equal(t, "5", q["limit"][0])
	require.Equal(t, "-ratings_average,price", q["sort"][0])
	require.Equal(t, "name,price,ratings_average,summary,difficulty", q["fields"][0])
}

func bindTour(t *testing.T, body string, partial bool) error {
	t.Helper()
	h := NewTourHandler(nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tours", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	_, _, err := h.Bind(c, partial)
	return err
}

func TestTourBindValidation(t *testing.T) {
	valid := `{"name":"The Forest Hiker","duration":5,"max_group_size":25,
		"difficulty":"easy","price":397,"summary":"Breathtaking hike"}`
	require.NoError(t, bindTour(t, valid, false))

	cases := map[string]string{
		"short name":       `{"name":"Short","duration":5,"max_group_size":25,"difficulty":"easy","price":397,"summary":"s"}`,
		"bad difficulty":   `{"name":"The Forest Hiker","duration":5,"max_group_size":25,"difficulty":"extreme","price":397,"summary":"s"}`,
		"negative price":   `{"name":"The Forest Hiker","duration":5,"max_group_size":25,"difficulty":"easy","price":-1,"summary":"s"}`,
		"discount >= price": `{"name":"The Forest Hiker","duration":5,"max_group_size":25,"difficulty":"easy","price":397,"price_discount":500,"summary":"s"}`,
		"missing summary":  `{"name":"The Forest Hiker","duration":5,"max_group_size":25,"difficulty":"easy","price":397}`,
	}
	for label, body := range cases {
		err := bindTour(t, body, false)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, label)
		require.Equal(t, http.StatusBadRequest, ae.Code, label)
	}
}

func TestTourBindPartialSkipsRequired(t *testing.T) {
	// a partial update touching only the price is fine
	require.NoError(t, bindTour(t, `{"price":499}`, true))

	// but present fields are still validated
	err := bindTour(t, `{"difficulty":"extreme"}`, true)
	require.Error(t, err)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
)

func bindReview(t *testing.T, body, tourParam string, principal *model.User, partial bool) (goqu.Record, error) {
	t.Helper()
	h := NewReviewHandler(nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	if tourParam != "" {
		c.SetParamNames("id")
		c.SetParamValues(tourParam)
	}
	if principal != nil {
		c.Set("user", *principal)
	}
	rec, _, err := h.Bind(c, partial)
	return rec, err
}

func TestReviewBindCreate(t *testing.T) {
	principal := &model.User{ID: 9, Role: model.RoleUser}

	rec, err := bindReview(t, `{"body":"Loved it","rating":5,"tour_id":3}`, "", principal, false)
	require.NoError(t, err)
	require.Equal(t, "Loved it", rec["body"])
	require.Equal(t, 5.0, rec["rating"])
	require.Equal(t, uint64(3), rec["tour_id"])
	require.Equal(t, uint64(9), rec["user_id"])
}

// the nested route's path param beats whatever tour id the body claims
func TestReviewBindNestedTourWins(t *testing.T) {
	principal := &model.User{ID: 9}

	rec, err := bindReview(t, `{"body":"Loved it","rating":4,"tour_id":3}`, "7", principal, false)
	require.NoError(t, err)
	require.Equal(t, uint64(7), rec["tour_id"])
}

func TestReviewBindValidation(t *testing.T) {
	principal := &model.User{ID: 9}

	cases := map[string]string{
		"empty body":     `{"body":"  ","rating":4,"tour_id":3}`,
		"missing body":   `{"rating":4,"tour_id":3}`,
		"rating too low": `{"body":"ok","rating":0,"tour_id":3}`,
		"rating too high": `{"body":"ok","rating":6,"tour_id":3}`,
		"missing tour":   `{"body":"ok","rating":4}`,
	}
	for label, body := range cases {
		_, err := bindReview(t, body, "", principal, false)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, label)
		require.Equal(t, http.StatusBadRequest, ae.Code, label)
	}
}

func TestReviewBindCreateRequiresPrincipal(t *testing.T) {
	_, err := bindReview(t, `{"body":"ok","rating":4,"tour_id":3}`, "", nil, false)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.Code)
}

// updates may only touch body and rating
func TestReviewBindPartial(t *testing.T) {
	rec, err := bindReview(t, `{"rating":2,"tour_id":99,"user_id":42}`, "", nil, true)
	require.NoError(t, err)
	require.Equal(t, 2.0, rec["rating"])
	require.NotContains(t, rec, "tour_id")
	require.NotContains(t, rec, "user_id")
}

func TestScopeToTour(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/5/reviews?rating[gte]=4", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("5")

	var q map[string][]string
	next := func(c echo.Context) error {
		q = c.QueryParams()
		return nil
	}
	require.NoError(t, ScopeToTour(next)(c))
	require.Equal(t, "5", q["tour_id"][0])
	require.Equal(t, "4", q["rating[gte]"][0])
}

func TestScopeToTourRejectsBadID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/abc/reviews", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := ScopeToTour(func(c echo.Context) error { return nil })(c)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusBadRequest, ae.Code)
}

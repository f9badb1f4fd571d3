package apperr

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	require.Equal(t, "fail", Validation("bad").Status())
	require.Equal(t, "fail", NotFound("missing").Status())
	require.Equal(t, "error", Internal(errors.New("boom")).Status())
}

func TestFromDB(t *testing.T) {
	require.NoError(t, FromDB(nil, "nf", "dup"))

	err := FromDB(sql.ErrNoRows, "no tour found with that ID", "dup")
	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusNotFound, ae.Code)
	require.Equal(t, "no tour found with that ID", ae.Message)

	err = FromDB(&mysql.MySQLError{Number: 1062}, "nf", "email already in use")
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusConflict, ae.Code)
	require.Equal(t, "email already in use", ae.Message)

	// unrelated faults pass through untouched
	cause := errors.New("connection refused")
	require.Equal(t, cause, FromDB(cause, "nf", "dup"))
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(NotFound("x")))
	require.False(t, IsNotFound(Validation("x")))
	require.False(t, IsNotFound(errors.New("x")))
}

func handleErr(t *testing.T, dev bool, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(dev)(err, c)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHTTPErrorHandlerOperational(t *testing.T) {
	rec, body := handleErr(t, false, NotFound("no tour found with that ID"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "fail", body.Status)
	require.Equal(t, "no tour found with that ID", body.Message)
	require.Empty(t, body.Detail)
}

func TestHTTPErrorHandlerHidesInternals(t *testing.T) {
	rec, body := handleErr(t, false, errors.New("pq: table exploded"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "error", body.Status)
	require.Equal(t, "something went very wrong", body.Message)
	require.Empty(t, body.Detail)
}

func TestHTTPErrorHandlerDevDetail(t *testing.T) {
	_, body := handleErr(t, true, errors.New("pq: table exploded"))
	require.Equal(t, "pq: table exploded", body.Detail)
}

func TestHTTPErrorHandlerEchoError(t *testing.T) {
	rec, body := handleErr(t, false, echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "fail", body.Status)
	require.Equal(t, "Not Found", body.Message)
}

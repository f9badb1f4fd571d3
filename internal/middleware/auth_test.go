package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/token"
)

const protectSecret = "protect-secret"

// stubUsers resolves every id to the configured user, or to missing when
// notFound is set.
type stubUsers struct {
	user     model.User
	notFound bool
}

func (s *stubUsers) GetActiveByID(ctx context.Context, id uint64) (model.User, error) {
	if s.notFound {
		return model.User{}, sql.ErrNoRows
	}
	return s.user, nil
}

func protectCall(t *testing.T, users PrincipalSource, decorate func(*http.Request)) (model.User, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if decorate != nil {
		decorate(req)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen model.User
	next := func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		seen = u
		return c.NoContent(http.StatusOK)
	}
	err := Protect(protectSecret, users)(next)(c)
	return seen, err
}

func TestProtectBearerToken(t *testing.T) {
	sess, err := token.Issue(protectSecret, 7, 15)
	require.NoError(t, err)

	seen, err := protectCall(t, &stubUsers{user: model.User{ID: 7, Role: model.RoleUser}}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sess.Token)
	})
	require.NoError(t, err)
	require.Equal(t, uint64(7), seen.ID)
}

func TestProtectCookieToken(t *testing.T) {
	sess, err := token.Issue(protectSecret, 7, 15)
	require.NoError(t, err)

	seen, err := protectCall(t, &stubUsers{user: model.User{ID: 7}}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: sess.Token})
	})
	require.NoError(t, err)
	require.Equal(t, uint64(7), seen.ID)
}

func TestProtectMissingToken(t *testing.T) {
	_, err := protectCall(t, &stubUsers{}, nil)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.Code)
	require.Equal(t, "you are not logged in, please log in to get access", ae.Message)
}

func TestProtectBadToken(t *testing.T) {
	_, err := protectCall(t, &stubUsers{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestProtectDeletedUser(t *testing.T) {
	sess, err := token.Issue(protectSecret, 7, 15)
	require.NoError(t, err)

	_, err = protectCall(t, &stubUsers{notFound: true}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sess.Token)
	})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.Code)
	require.Equal(t, "the user belonging to this token no longer exists", ae.Message)
}

func TestProtectStaleToken(t *testing.T) {
	sess, err := token.Issue(protectSecret, 7, 15)
	require.NoError(t, err)

	changed := time.Now().UTC().Add(time.Hour)
	_, err = protectCall(t, &stubUsers{user: model.User{ID: 7, PasswordChangedAt: &changed}}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+sess.Token)
	})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.Code)
	require.Equal(t, "user recently changed password, please log in again", ae.Message)
}

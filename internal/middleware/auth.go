package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/token"
)

// principalKey is the context key under which Protect stores the
// authenticated user.
const principalKey = "user"

// PrincipalSource resolves the principal a verified token belongs to.
// Deactivated or deleted accounts must read as missing.
type PrincipalSource interface {
	GetActiveByID(ctx context.Context, id uint64) (model.User, error)
}

// Protect returns middleware that authenticates the request before the
// handler runs. The token is read from the Authorization header (Bearer) or
// the jwt cookie, verified, and its subject loaded from storage. A token
// issued before the principal's last password change is rejected. On
// success the principal is stored in the request context for CurrentUser.
func Protect(secret string, users PrincipalSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerOrCookie(c)
			if raw == "" {
				return apperr.Unauthorized("you are not logged in, please log in to get access")
			}

			claims, err := token.Verify(secret, raw)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetActiveByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperr.Unauthorized("the user belonging to this token no longer exists")
				}
				return err
			}

			if token.ChangedAfter(u.PasswordChangedAt, claims.IssuedAt) {
				return apperr.Unauthorized("user recently changed password, please log in again")
			}

			c.Set(principalKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the principal stored by Protect. The boolean is false
// when the route was not protected, which is a wiring mistake in the router.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(principalKey).(model.User)
	return u, ok
}

func bearerOrCookie(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie("jwt"); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}

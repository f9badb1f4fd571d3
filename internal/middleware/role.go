package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

// RestrictTo returns middleware that lets the request through only when the
// authenticated principal's role is in the allowed set. It must run after
// Protect; reaching it without a principal in context means the route was
// wired without authentication and the request is rejected outright.
func RestrictTo(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return apperr.Unauthorized("you are not logged in, please log in to get access")
			}
			if !allowed[u.Role] {
				return apperr.Forbidden("you do not have permission to perform this action")
			}
			return next(c)
		}
	}
}

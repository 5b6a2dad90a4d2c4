package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authhub/identity-service/internal/api/handler"
	"github.com/authhub/identity-service/internal/core/domain"
)

// RequireAdmin rejects requests from non-admin users with 403. Must run
// after CurrentUser.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(handler.UserContextKey).(*domain.User)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}

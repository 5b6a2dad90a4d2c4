package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authhub/identity-service/internal/api/handler"
	"github.com/authhub/identity-service/internal/core/ports"
	"github.com/authhub/identity-service/internal/core/token"
)

// CurrentUser authenticates the request from the access-token cookie and
// injects the resolved user into the context for downstream handlers.
//
// Every failure — missing cookie, bad signature, expired token, missing
// subject, unknown user — is a 401. The unknown-user case is deliberately
// not a 404 so the endpoint does not reveal which accounts exist.
func CurrentUser(codec *token.Codec, users ports.UserRepository, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "access token missing")
			}

			claims, err := codec.Verify(cookie.Value, true)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			userID := token.Subject(claims)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}

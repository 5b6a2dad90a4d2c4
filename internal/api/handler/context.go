package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/authhub/identity-service/internal/core/domain"
)

// UserContextKey is where the CurrentUser middleware stores the resolved
// user on the echo context.
const UserContextKey = "current_user"

// ctxUser extracts the user injected by the CurrentUser middleware. Its
// absence means the route was wired without the middleware; treat that the
// same as an unauthenticated request rather than leaking a 500.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(UserContextKey).(*domain.User)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sunflower/sunflower-api/internal/api/middleware"
	"github.com/sunflower/sunflower-api/internal/core/domain"
)

// currentUser returns the principal set by the auth middleware. A missing
// user means the route was registered without it; fail closed with 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

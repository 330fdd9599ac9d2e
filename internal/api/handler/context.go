package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// currentUser returns the authenticated user attached by the Authenticate
// middleware. Its absence means the route was wired without authentication.
func currentUser(c echo.Context) (*domain.User, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, domain.ErrAuthRequired
	}
	return p.User, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

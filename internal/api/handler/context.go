package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/api/middleware"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// ctxClaims returns the identity the Auth middleware attached to the request.
// Its absence means the route was wired without the middleware.
func ctxClaims(c echo.Context) (*ports.TokenClaims, error) {
	claims, ok := middleware.ClaimsFromContext(c.Request().Context())
	if !ok || claims.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
			SetInternal(domain.ErrUnauthenticated)
	}
	return claims, nil
}

// ctxUserID is ctxClaims reduced to the owner id passed to services.
func ctxUserID(c echo.Context) (string, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

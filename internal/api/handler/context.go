package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/middleware"
)

// ctxUserID returns the id injected by the Auth middleware. Its absence means
// the route was mounted without Auth, which is answered with 401 rather than
// trusting anything in the payload.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

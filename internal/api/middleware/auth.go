package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/pkg/token"
)

// ContextUserID is the echo context key holding the authenticated user id.
const ContextUserID = "user_id"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// Auth validates the bearer token and injects the user id into the context.
// Anything the client sends in the body is left untouched.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Please provide a bearer token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Please provide a bearer token")
			}

			userID, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, token.ErrNoSecret) {
					return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized user")
			}

			c.Set(ContextUserID, userID)
			return next(c)
		}
	}
}

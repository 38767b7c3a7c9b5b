package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// UserFinder loads a user by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireAdmin re-reads the authenticated user and lets only admins through.
// It must run after Auth; without a user id it answers 401. Non-admins get
// domain.ErrForbidden.
func RequireAdmin(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(ContextUserID).(string)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "User not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
			}
			if !user.IsAdmin() {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicvote/voting-system/internal/api/metrics"
	"github.com/civicvote/voting-system/internal/core/domain"
)

// UploadLimiter admits or refuses one upload for a user.
type UploadLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// UploadRateLimit caps image-bearing requests per authenticated user. When the
// limiter is unavailable the request goes through and a warning is logged.
func UploadRateLimit(limiter UploadLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(ContextUserID).(string)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			ok, err := limiter.Allow(c.Request().Context(), id)
			if err != nil {
				log.Warn().Err(err).Str("user_id", id).Msg("upload limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.ImageUploadsTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, domain.ErrUploadRateLimited.Error())
			}
			return next(c)
		}
	}
}

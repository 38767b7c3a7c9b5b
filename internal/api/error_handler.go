package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicvote/voting-system/internal/api/handler"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors through handler.StatusFor.
//   - Logs server-side failures without leaking details to the client.
//   - Renders the same JSON envelope handlers use.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if code, _ := handler.StatusFor(err); code >= http.StatusInternalServerError {
			cause := err
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Internal != nil {
				cause = he.Internal
			}
			log.Error().
				Err(cause).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			code, _ := handler.StatusFor(err)
			_ = c.NoContent(code)
			return
		}
		_ = handler.Render(c, err)
	}
}

package middleware

import (
	"io"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/metrics"
	"github.com/civicvote/voting-system/internal/core/domain"
)

// UploadBodyLimit caps the request body of image upload routes at limit
// bytes. A larger body is answered with domain.ErrFileTooLarge whether it is
// caught by Content-Length or while the form is being read. It must run after
// Auth and RequireAdmin.
func UploadBodyLimit(limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength > limit {
				metrics.ImageUploadsTotal.WithLabelValues("too_large").Inc()
				return domain.ErrFileTooLarge
			}

			body := &cappedBody{ReadCloser: req.Body, remaining: limit}
			req.Body = body

			err := next(c)
			if err != nil && body.exceeded {
				metrics.ImageUploadsTotal.WithLabelValues("too_large").Inc()
				return domain.ErrFileTooLarge
			}
			return err
		}
	}
}

// cappedBody fails reads once more than remaining bytes would be consumed.
type cappedBody struct {
	io.ReadCloser
	remaining int64
	exceeded  bool
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.exceeded {
		return 0, domain.ErrFileTooLarge
	}
	if b.remaining <= 0 {
		var one [1]byte
		n, err := b.ReadCloser.Read(one[:])
		if n > 0 {
			b.exceeded = true
			return 0, domain.ErrFileTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.ReadCloser.Read(p)
	b.remaining -= int64(n)
	return n, err
}

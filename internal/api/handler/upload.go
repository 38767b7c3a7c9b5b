package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/metrics"
	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

const imageField = "image"

// readImage picks the single "image" file of a multipart request. It returns
// nil when the image is optional and absent. The caller must close the
// returned file.
func readImage(c echo.Context, required bool, maxBytes int64) (*ports.ImageUpload, multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			if required {
				return nil, nil, domain.ErrImageRequired
			}
			return nil, nil, nil
		}
		if errors.Is(err, domain.ErrFileTooLarge) {
			return nil, nil, domain.ErrFileTooLarge
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	total := 0
	for _, files := range form.File {
		total += len(files)
	}
	if total > 1 {
		return nil, nil, uploadRejected(domain.ErrTooManyFiles, "too_many")
	}
	for field, files := range form.File {
		if field != imageField && len(files) > 0 {
			return nil, nil, uploadRejected(echo.NewHTTPError(http.StatusBadRequest, "unexpected file field: "+field), "invalid_field")
		}
	}

	files := form.File[imageField]
	if len(files) == 0 {
		if required {
			return nil, nil, domain.ErrImageRequired
		}
		return nil, nil, nil
	}

	fh := files[0]
	if !domain.AllowedImageExtension(fh.Filename) {
		return nil, nil, uploadRejected(domain.ErrInvalidFileType, "invalid_type")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, nil, uploadRejected(domain.ErrFileTooLarge, "too_large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &ports.ImageUpload{Filename: fh.Filename, Content: f}, f, nil
}

// bindError keeps an oversize body distinct from a malformed one.
func bindError(err error) error {
	if errors.Is(err, domain.ErrFileTooLarge) {
		return domain.ErrFileTooLarge
	}
	return errInvalidPayload
}

func uploadRejected(err error, result string) error {
	metrics.ImageUploadsTotal.WithLabelValues(result).Inc()
	return err
}

// uploadOutcome labels the result of storing an accepted upload.
func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrInvalidFileType):
		return "invalid_type"
	case errors.Is(err, domain.ErrFileTooLarge):
		return "too_large"
	default:
		return "error"
	}
}

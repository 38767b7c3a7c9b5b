package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// ErrorResponse is the error envelope of every endpoint. Errors is only set
// for validation failures.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

var errInvalidPayload = echo.NewHTTPError(http.StatusBadRequest, "invalid payload")

// statusTable is checked in order with errors.Is.
var statusTable = []struct {
	err  error
	code int
}{
	{domain.ErrUnderage, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusBadRequest},
	{domain.ErrIncorrectPassword, http.StatusBadRequest},
	{domain.ErrAlreadyVoted, http.StatusBadRequest},
	{domain.ErrAdminCannotVote, http.StatusBadRequest},
	{domain.ErrImageRequired, http.StatusBadRequest},
	{domain.ErrInvalidFileType, http.StatusBadRequest},
	{domain.ErrFileTooLarge, http.StatusBadRequest},
	{domain.ErrTooManyFiles, http.StatusBadRequest},
	{domain.ErrDuplicate, http.StatusBadRequest},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrCandidateNotFound, http.StatusNotFound},
	{domain.ErrUploadRateLimited, http.StatusTooManyRequests},
}

// StatusFor maps err to an HTTP status and a client-safe message. Anything
// unknown becomes 500 with a generic message.
func StatusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation failed"
	}

	var de *domain.DuplicateFieldError
	if errors.As(err, &de) {
		return http.StatusBadRequest, de.Error()
	}

	for _, row := range statusTable {
		if errors.Is(err, row.err) {
			return row.code, row.err.Error()
		}
	}

	return http.StatusInternalServerError, "internal server error"
}

// Render writes the error envelope for err.
func Render(c echo.Context, err error) error {
	code, msg := StatusFor(err)
	body := ErrorResponse{Error: msg}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Errors = ve.Fields
	}
	return c.JSON(code, body)
}

// writeError renders known errors and hands anything else back to echo so the
// central error handler can log it before answering 500.
func writeError(c echo.Context, err error) error {
	if code, _ := StatusFor(err); code == http.StatusInternalServerError {
		return err
	}
	return Render(c, err)
}

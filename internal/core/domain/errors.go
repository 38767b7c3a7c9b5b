package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("old password is incorrect")
	ErrUnderage           = errors.New("registration is restricted for users under 18")
	ErrAlreadyVoted       = errors.New("you have already voted")
	ErrAdminCannotVote    = errors.New("admin is not allowed to vote")
	ErrForbidden          = errors.New("Only admin can access!")
	ErrDuplicate          = errors.New("duplicate value")

	ErrImageRequired     = errors.New("image is required")
	ErrInvalidFileType   = errors.New("the file type is not allowed, only png, jpg, jpeg")
	ErrFileTooLarge      = errors.New("the file size exceeded the limit, please select a smaller file")
	ErrTooManyFiles      = errors.New("you can only upload one file at a time")
	ErrUploadRateLimited = errors.New("too many uploads, try again later")
)

// FieldError describes a single failed field check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError accumulates every failed field check of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Merge appends all failures of other, which may be nil.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Fields = append(e.Fields, other.Fields...)
}

// OrNil returns nil when no failure was recorded, so callers can return the
// result directly as an error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DuplicateFieldError reports a unique constraint violation on Field.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return e.Field + " already exists"
}

func (e *DuplicateFieldError) Unwrap() error {
	return ErrDuplicate
}

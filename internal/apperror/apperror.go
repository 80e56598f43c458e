// Package apperror defines the domain error kinds shared by every layer.
//
// Services return these; the HTTP layer maps them to status codes with
// errors.Is. Nothing below the handler layer knows about HTTP codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUploadFailed = errors.New("upload failed")
	ErrInternal     = errors.New("internal error")
)

// AppError is the single structured error type crossing workflow boundaries.
//
// Err is one of the sentinels above — errors.Is(appErr, ErrConflict) walks
// the chain via Unwrap. Field is set for field-level validation failures so
// the response layer can report which input was bad.
type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message, safe to return to clients
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// UploadFailed wraps a media-store failure. The cause stays in the error
// chain for logging but is never serialized to the client.
func UploadFailed(what string, cause error) *AppError {
	err := error(ErrUploadFailed)
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUploadFailed, cause)
	}
	return &AppError{
		Err:     err,
		Message: fmt.Sprintf("failed to upload %s", what),
	}
}

// Internal wraps an unexpected lower-layer error. The client sees only the
// message; the cause stays in the chain for logs.
func Internal(message string, cause error) *AppError {
	err := error(ErrInternal)
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInternal, cause)
	}
	return &AppError{
		Err:     err,
		Message: message,
	}
}

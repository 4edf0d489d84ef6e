// Package apperror defines the domain errors shared by the service and
// handler layers. Services return these; handlers map them to HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTooLarge     = errors.New("too large")
)

// FieldError describes one failed rule on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // sentinel, matched with errors.Is
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Reason  string       // Optional: business-rule explanation (tag in use, already liked)
	Details []FieldError // Optional: per-field validation failures
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Details: []FieldError{{Field: field, Rule: "invalid", Message: message}},
	}
}

// Invalid wraps a set of field failures produced by schema validation.
func Invalid(details []FieldError) *AppError {
	msg := "validation failed"
	field := ""
	if len(details) > 0 {
		field = details[0].Field
	}
	return &AppError{
		Err:     ErrValidation,
		Message: msg,
		Field:   field,
		Details: details,
	}
}

// Conflict reports a business rule preventing the operation. The reason is
// shown to the user as-is.
func Conflict(message, reason string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Reason:  reason,
	}
}

// Unauthorized is returned when the publish secret is missing or wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// TooLarge reports an upload exceeding a size limit.
func TooLarge(field, message string) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: message,
		Field:   field,
	}
}

package handler

// RESPONSE HELPERS:
// Every handler writes through a Responder so that success bodies and error
// bodies have one shape across the API.
//
// ERROR FORMAT:
//
//	{"error": "tag not found with id tag-9", "code": "not_found"}
//	{"error": "validation failed", "code": "validation_error", "details": [...]}
//	{"error": "cannot delete tag", "code": "conflict", "reason": "2 message(s) use this tag"}
//
// "error" is always present and human-readable; the SPA shows it as-is.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/validate"
)

// maxJSONBody caps JSON request bodies. Uploads go through multipart and
// have their own limits.
const maxJSONBody = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Code    string                `json:"code,omitempty"`
	Reason  string                `json:"reason,omitempty"`
	Details []apperror.FieldError `json:"details,omitempty"`
	Message string                `json:"message,omitempty"` // internal detail, development only
}

// SuccessResponse is returned by deletes.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Responder encodes responses and maps domain errors to HTTP.
//
// When debug is set (ENV=development), 500 responses carry the underlying
// error text in "message". Otherwise internals never reach the client.
type Responder struct {
	logger    *slog.Logger
	validator *validate.Validator
	debug     bool
}

// NewResponder creates a Responder shared by all handlers.
func NewResponder(logger *slog.Logger, v *validate.Validator, debug bool) *Responder {
	return &Responder{logger: logger, validator: v, debug: debug}
}

// JSON writes data with the given status.
//
// Headers and status must be set before the body: once Encode writes, the
// header is sent and later changes are ignored.
func (rs *Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			rs.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// Error maps err to a status code and writes an ErrorResponse.
//
// errors.Is walks the Unwrap chain, so a service may wrap an AppError with
// fmt.Errorf("...: %w", err) and it still maps correctly.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := classify(err)
		if status == http.StatusInternalServerError {
			rs.internal(w, r, err)
			return
		}
		rs.JSON(w, status, ErrorResponse{
			Error:   appErr.Message,
			Code:    code,
			Reason:  appErr.Reason,
			Details: appErr.Details,
		})
		return
	}

	rs.internal(w, r, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		// Business-rule refusals (tag in use, already liked) are 400s in
		// the API the SPA was written against.
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (rs *Responder) internal(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.Error("request failed",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	resp := ErrorResponse{Error: "internal server error", Code: "internal_error"}
	if rs.debug {
		resp.Message = err.Error()
	}
	rs.JSON(w, http.StatusInternalServerError, resp)
}

// Decode reads a JSON body into dst and runs its validate tags. On failure
// it writes the error response and returns false.
func (rs *Responder) Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			rs.Error(w, r, apperror.TooLarge("body", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
		case errors.Is(err, io.EOF):
			rs.Error(w, r, apperror.ValidationFailed("body", "request body is required"))
		default:
			rs.Error(w, r, apperror.ValidationFailed("body", "invalid JSON body"))
		}
		return false
	}

	if err := rs.validator.Struct(dst); err != nil {
		rs.Error(w, r, err)
		return false
	}
	return true
}

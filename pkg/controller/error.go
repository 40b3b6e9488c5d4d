package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/store"
)

// AppError is the application error contract shared across layers. Code is
// a stable dotted identifier such as "validation.per_page".
type AppError struct {
	Code       string
	Message    string
	Details    map[string]any
	HTTPStatus int
	Cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	label := e.Code
	if e.Message != "" {
		label = e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", label, e.Cause)
	}
	return label
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithDetails returns e with details attached.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// ErrorResponse represents the consistent error response format.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// MapError maps application errors to HTTP responses. Store sentinels map
// to 404, 409 and 400; anything unrecognized is a 500 whose message does not
// leak the cause.
func MapError(ctx context.Context, err error) (int, ErrorResponse) {
	requestID := logger.RequestIDFromContext(ctx)

	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, store.ErrNotFound):
		appErr = NewNotFoundError(err.Error())
	case errors.Is(err, store.ErrConflict):
		appErr = NewConflictError(err.Error(), nil)
	case errors.Is(err, store.ErrInvalid):
		appErr = NewValidationError(err.Error(), nil)
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_server_error",
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = inferStatusFromCode(appErr.Code)
	}
	message := appErr.Message
	if message == "" {
		message = "an unexpected error occurred"
	}

	return status, ErrorResponse{
		Error:     errorCategory(status, appErr.Code),
		Code:      appErr.Code,
		Message:   message,
		RequestID: requestID,
		Details:   appErr.Details,
	}
}

// NewValidationError creates a 400 error.
func NewValidationError(message string, details map[string]any) *AppError {
	return &AppError{Code: "validation.failed", Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

// NewValidationErrorWithCode creates a 400 error with a specific code.
func NewValidationErrorWithCode(code, message string, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: "resource.not_found", Message: message, HTTPStatus: http.StatusNotFound}
}

// NewConflictError creates a 409 error.
func NewConflictError(message string, details map[string]any) *AppError {
	return &AppError{Code: "resource.conflict", Message: message, HTTPStatus: http.StatusConflict, Details: details}
}

// NewTooManyRequestsError creates a 429 error.
func NewTooManyRequestsError(message string) *AppError {
	return &AppError{Code: "rate_limit.exceeded", Message: message, HTTPStatus: http.StatusTooManyRequests}
}

// NewPayloadTooLargeError creates a 413 error for bodies above maxBytes.
func NewPayloadTooLargeError(maxBytes int64) *AppError {
	return &AppError{
		Code:       "request.too_large",
		Message:    fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", maxBytes),
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details:    map[string]any{"max_size": maxBytes},
	}
}

// NewInternalError creates a 500 error with an optional cause.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: "internal.error", Message: message, HTTPStatus: http.StatusInternalServerError, Cause: cause}
}

func errorCategory(status int, code string) string {
	if strings.HasPrefix(strings.ToLower(code), "validation.") {
		return "validation_error"
	}

	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	default:
		if status >= 500 {
			return "internal_server_error"
		}
		return "application_error"
	}
}

func inferStatusFromCode(code string) int {
	lowerCode := strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(lowerCode, "validation."):
		return http.StatusBadRequest
	case strings.Contains(lowerCode, "not_found"):
		return http.StatusNotFound
	case strings.Contains(lowerCode, "conflict"):
		return http.StatusConflict
	case strings.HasPrefix(lowerCode, "rate_limit."):
		return http.StatusTooManyRequests
	case strings.Contains(lowerCode, "internal"):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

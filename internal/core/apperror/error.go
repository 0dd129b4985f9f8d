// Package apperror provides the structured error type shared by every layer.
// Domain code returns *AppError; the HTTP layer renders it as {code, message, details}.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Error codes
const (
	// Infrastructure (5xx)
	CodeInternal         = "INTERNAL_ERROR"
	CodeConsistencyFault = "CONSISTENCY_FAULT"

	// Caller input (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rules (422)
	CodeInsufficientStock = "INSUFFICIENT_STOCK"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict           = "CONFLICT"
	CodeDuplicate          = "DUPLICATE_ENTRY"
	CodeContentionTimeout  = "CONTENTION_TIMEOUT"
	CodeIdempotency        = "IDEMPOTENCY_CONFLICT"
	CodeConcurrentModified = "CONCURRENT_MODIFICATION"
)

// AppError is the standard error type of the service.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Details carries context the caller needs to correct the request
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (never rendered)
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factories ---

// NewValidation reports input that violates a static constraint.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound reports a missing (or soft-deleted) entity.
func NewNotFound(entity string, key any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "key": key},
	}
}

// NewInsufficientStock reports a sale larger than the allocatable quantity.
func NewInsufficientStock(itemCode string, requested, available decimal.Decimal) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"item_code": itemCode,
			"requested": requested.String(),
			"available": available.String(),
		},
	}
}

// NewConsistencyFault reports a broken internal invariant.
// It is never caller-recoverable and is logged at error level by the transport.
func NewConsistencyFault(message string) *AppError {
	return &AppError{
		Code:       CodeConsistencyFault,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewContentionTimeout reports that the exclusive scope of an item
// could not be acquired in time. Safe to retry with backoff.
func NewContentionTimeout(itemCode string) *AppError {
	return &AppError{
		Code:       CodeContentionTimeout,
		Message:    "Item is busy, retry later",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"item_code": itemCode, "retryable": true},
	}
}

// NewConcurrentModification reports a failed optimistic version check.
func NewConcurrentModification(entity string, key any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModified,
		Message:    "Record was modified by another request. Refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "key": key},
	}
}

// NewInternal wraps an unexpected error and hides it from the client.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewIdempotencyConflict is returned while a request with the same key is in flight.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Operation already in progress",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when a key is reused for a different request.
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// --- Helpers ---

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool          { return hasCode(err, CodeNotFound) }
func IsValidation(err error) bool        { return hasCode(err, CodeValidation) }
func IsInsufficientStock(err error) bool { return hasCode(err, CodeInsufficientStock) }
func IsConsistencyFault(err error) bool  { return hasCode(err, CodeConsistencyFault) }
func IsContentionTimeout(err error) bool { return hasCode(err, CodeContentionTimeout) }
func IsDuplicate(err error) bool         { return hasCode(err, CodeDuplicate) }
func IsConflict(err error) bool          { return hasCode(err, CodeConflict) }

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return IsContentionTimeout(err) || hasCode(err, CodeConcurrentModified)
}

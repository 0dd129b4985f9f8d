// Package idempotency defines how repeated mutating requests are recognized
// and answered with the first response.
package idempotency

import (
	"context"
	"net/http"
)

// Replay is a stored response returned for a repeated request.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store keeps idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller now holds key and
	// (replay, nil) when the operation already finished. A key held by
	// another request is IdempotencyConflict; a key reused for a different
	// request is IdempotencyMismatch.
	AcquireKey(ctx context.Context, key, operation, requestHash string) (*Replay, error)

	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// Release forgets a pending key so the request can be retried as new.
	Release(ctx context.Context, key string) error
}

// NormalizeStatus replays an unset status as 200.
func NormalizeStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

// NormalizeContentType replays an unset content type as JSON.
func NormalizeContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}

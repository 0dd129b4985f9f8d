// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"fifostock/internal/domain"
)

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps a domain page through fn.
func NewListResponse[E, T any](res domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, fn(e))
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Package domain holds the listing contracts shared by catalog and document repositories.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches code or name (case-insensitive substring)
	Search string

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// Pagination
	Limit  int
	Offset int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultLimit}
}

// Normalize clamps pagination into the accepted bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

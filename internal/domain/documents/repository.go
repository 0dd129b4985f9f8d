// Package documents holds what purchase and sale documents share: a dated,
// coded header that owns detail lines.
package documents

import (
	"context"
	"time"

	"fifostock/internal/core/entity"
	"fifostock/internal/domain"
)

// Header is implemented by document types.
type Header interface {
	entity.Validatable
	Doc() *entity.Document
}

// HeaderRepository persists document headers of type T with detail lines D.
// Detail lines are written by inventory.Store only; here they are read.
type HeaderRepository[T Header, D any] interface {
	Create(ctx context.Context, doc T) error
	GetByCode(ctx context.Context, code string) (T, error)

	// GetForUpdate locks the header row for the current transaction.
	GetForUpdate(ctx context.Context, code string) (T, error)

	// GetForShare keeps the header from being updated or deleted for the
	// current transaction. Other GetForShare holders are not blocked.
	GetForShare(ctx context.Context, code string) (T, error)

	// Update writes date and description, checking the version.
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)

	Details(ctx context.Context, code string) ([]D, error)
}

// Patch holds the editable attributes of a header. Nil fields are left as is.
type Patch struct {
	Date        *time.Time
	Description *string
	// Version, when non-zero, must match the stored version
	Version int
}

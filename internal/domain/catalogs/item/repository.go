package item

import (
	"context"

	"fifostock/internal/domain"
)

// Repository persists items.
//
// Update writes the descriptive columns only (name, unit, description) and
// checks the version. The ledger columns are owned by inventory.Store.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByCode(ctx context.Context, code string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
}

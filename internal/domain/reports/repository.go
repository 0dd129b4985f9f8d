package reports

import (
	"context"
	"time"

	"fifostock/internal/domain/catalogs/item"
)

// HistorySource reads the committed movements of an item.
type HistorySource interface {
	// Events returns every purchase and sale detail of itemCode dated on or
	// before to (all of them when to is nil), in no particular order.
	Events(ctx context.Context, itemCode string, to *time.Time) ([]Event, error)
}

// ItemReader resolves the item a ledger is built for.
type ItemReader interface {
	GetByCode(ctx context.Context, code string) (*item.Item, error)
}

package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/id"
	"fifostock/internal/domain/catalogs/item"
)

// Store is the persistence boundary of the lot engine. Every method runs
// inside the transaction carried by ctx. Only Recorder calls the writing
// methods.
type Store interface {
	// LockItem takes the exclusive scope of an item for the rest of the
	// transaction and returns it. Missing or deleted items are NotFound;
	// failing to get the scope within timeout is ContentionTimeout.
	LockItem(ctx context.Context, code string, timeout time.Duration) (*item.Item, error)

	// LotsFor returns the live lots of an item that still hold stock,
	// oldest first (see CompareLots). Exhausted lots are omitted.
	LotsFor(ctx context.Context, itemCode string) ([]*Lot, error)

	// LatestMovement returns the last movement of an item in history order
	// (see CompareMovements), restricted to kind unless kind is empty.
	// ok is false while the item has no such movement.
	LatestMovement(ctx context.Context, itemCode, kind string) (key MovementKey, ok bool, err error)

	InsertLot(ctx context.Context, lot *Lot) error

	// ApplyConsumption decreases the remaining quantity of a lot.
	// It requires 0 < amount <= remaining; anything else is a ConsistencyFault.
	ApplyConsumption(ctx context.Context, lotID id.ID, amount decimal.Decimal) error

	InsertConsumption(ctx context.Context, c *Consumption) error

	// UpdateLedger overwrites the cached stock and balance of an item.
	UpdateLedger(ctx context.Context, itemCode string, ledger Ledger) error
}

// Locker is an optional item-scoped lock taken before the transaction starts,
// e.g. to serialize writers across several service instances.
type Locker interface {
	// Lock blocks until the item is held or ctx is done.
	// A ctx deadline turns into ContentionTimeout.
	Lock(ctx context.Context, itemCode string) (unlock func(), err error)
}

// AuditSink receives a record of every committed ledger change,
// inside the same transaction.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Movement kinds.
const (
	MovementPurchase = "purchase"
	MovementSale     = "sale"
)

// AuditEntry describes one recorded movement.
type AuditEntry struct {
	Kind         string          `json:"kind"`
	ItemCode     string          `json:"item_code"`
	DocumentCode string          `json:"document_code"`
	DetailID     id.ID           `json:"detail_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
	Takes        []Take          `json:"takes,omitempty"`
	Before       Ledger          `json:"before"`
	After        Ledger          `json:"after"`
}

// Package inventory is the FIFO lot-costing engine.
//
// Purchases create lots; sales consume lots oldest first. Recorder is the only
// entry point that mutates lots or item ledgers, and it does so inside one
// transaction per item.
package inventory

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/id"
)

// Lot is one purchase detail line: a costed batch of an item.
//
// Quantity and UnitPrice never change after creation. Remaining starts at
// Quantity and only decreases; an exhausted lot (Remaining == 0) is kept for
// history.
type Lot struct {
	ID           id.ID           `db:"id" json:"id"`
	DocumentCode string          `db:"purchase_code" json:"purchase_code"`
	DocumentDate time.Time       `db:"date" json:"date"`
	ItemCode     string          `db:"item_code" json:"item_code"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Remaining    decimal.Decimal `db:"remaining_quantity" json:"remaining_quantity"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// NewLot creates a full lot.
func NewLot(documentCode string, documentDate time.Time, itemCode string, quantity, unitPrice decimal.Decimal) *Lot {
	return &Lot{
		ID:           id.New(),
		DocumentCode: documentCode,
		DocumentDate: documentDate,
		ItemCode:     itemCode,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Remaining:    quantity,
		CreatedAt:    time.Now().UTC(),
	}
}

// Exhausted reports whether nothing is left in the lot.
func (l *Lot) Exhausted() bool {
	return !l.Remaining.IsPositive()
}

// Value is the cost of what is left in the lot.
func (l *Lot) Value() decimal.Decimal {
	return l.Remaining.Mul(l.UnitPrice)
}

// Consume takes amount out of the lot.
// It panics unless 0 < amount <= Remaining: callers must plan with Allocate first.
func (l *Lot) Consume(amount decimal.Decimal) {
	if !amount.IsPositive() || amount.GreaterThan(l.Remaining) {
		panic(fmt.Sprintf("inventory: consume %s from lot %s with %s remaining", amount, l.ID, l.Remaining))
	}
	l.Remaining = l.Remaining.Sub(amount)
}

// CompareLots is the FIFO order: document date, then document code, then lot id.
func CompareLots(a, b *Lot) int {
	if c := a.DocumentDate.Compare(b.DocumentDate); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DocumentCode, b.DocumentCode); c != 0 {
		return c
	}
	return id.Compare(a.ID, b.ID)
}

// MovementKey places a purchase or sale line in the history of an item.
type MovementKey struct {
	Date         time.Time `db:"date"`
	DocumentCode string    `db:"code"`
	Kind         string    `db:"kind"`
}

// CompareMovements is the history order: date, then document code, then
// purchases before sales. Lines of one document share a key.
func CompareMovements(a, b MovementKey) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DocumentCode, b.DocumentCode); c != 0 {
		return c
	}
	if a.Kind == b.Kind {
		return 0
	}
	if a.Kind == MovementPurchase {
		return -1
	}
	return 1
}

// SortLots orders lots oldest first.
func SortLots(lots []*Lot) {
	slices.SortStableFunc(lots, CompareLots)
}

// CloneLots deep-copies lots so a plan can be tried without touching the originals.
func CloneLots(lots []*Lot) []*Lot {
	out := make([]*Lot, len(lots))
	for i, l := range lots {
		c := *l
		out[i] = &c
	}
	return out
}

// Consumption is one sale detail line. Its cost is resolved when it is
// recorded and is not stored; replaying history recovers it.
type Consumption struct {
	ID           id.ID           `db:"id" json:"id"`
	DocumentCode string          `db:"sale_code" json:"sale_code"`
	DocumentDate time.Time       `db:"date" json:"date"`
	ItemCode     string          `db:"item_code" json:"item_code"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// NewConsumption creates a sale line.
func NewConsumption(documentCode string, documentDate time.Time, itemCode string, quantity decimal.Decimal) *Consumption {
	return &Consumption{
		ID:           id.New(),
		DocumentCode: documentCode,
		DocumentDate: documentDate,
		ItemCode:     itemCode,
		Quantity:     quantity,
		CreatedAt:    time.Now().UTC(),
	}
}

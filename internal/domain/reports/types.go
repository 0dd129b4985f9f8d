// Package reports reconstructs the FIFO ledger of an item from its history.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/inventory"
)

// DateRange is an inclusive range of business dates. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Validate rejects inverted ranges.
func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return apperror.NewValidation("start_date must not be after end_date").
			WithDetail("start_date", r.From.Format("2006-01-02")).
			WithDetail("end_date", r.To.Format("2006-01-02"))
	}
	return nil
}

// Contains reports whether date falls inside the range.
func (r DateRange) Contains(date time.Time) bool {
	if r.From != nil && date.Before(*r.From) {
		return false
	}
	if r.To != nil && date.After(*r.To) {
		return false
	}
	return true
}

// Event is one committed detail line of an item, as read from history.
// UnitPrice is set for purchases only.
type Event struct {
	Kind        string          `db:"kind"`
	Date        time.Time       `db:"date"`
	Code        string          `db:"code"`
	Description string          `db:"description"`
	DetailID    id.ID           `db:"detail_id"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
}

// Key is the place of the event in the item history.
func (e Event) Key() inventory.MovementKey {
	return inventory.MovementKey{Date: e.Date, DocumentCode: e.Code, Kind: e.Kind}
}

// CompareEvents is the replay order: the history order of
// inventory.CompareMovements, then detail id.
func CompareEvents(a, b Event) int {
	if c := inventory.CompareMovements(a.Key(), b.Key()); c != 0 {
		return c
	}
	return id.Compare(a.DetailID, b.DetailID)
}

// Position is one live lot in the running composition.
type Position struct {
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Row is the ledger line emitted after one event.
type Row struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Kind        string          `json:"kind"`
	InQty       decimal.Decimal `json:"in_qty"`
	InPrice     decimal.Decimal `json:"in_price"`
	InTotal     decimal.Decimal `json:"in_total"`
	OutQty      decimal.Decimal `json:"out_qty"`
	OutPrice    decimal.Decimal `json:"out_price"`
	OutTotal    decimal.Decimal `json:"out_total"`
	Stock       []Position      `json:"stock"`
	BalanceQty  decimal.Decimal `json:"balance_qty"`
	Balance     decimal.Decimal `json:"balance"`
}

// Summary closes the ledger.
type Summary struct {
	OpeningQty     decimal.Decimal `json:"opening_qty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	InQty          decimal.Decimal `json:"in_qty"`
	OutQty         decimal.Decimal `json:"out_qty"`
	BalanceQty     decimal.Decimal `json:"balance_qty"`
	Balance        decimal.Decimal `json:"balance"`
}

// ItemLedger is the reconstructed ledger of one item.
type ItemLedger struct {
	ItemCode string    `json:"item_code"`
	Name     string    `json:"name"`
	Unit     string    `json:"unit"`
	Range    DateRange `json:"-"`
	Rows     []Row     `json:"items"`
	Summary  Summary   `json:"summary"`
}

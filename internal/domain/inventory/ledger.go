package inventory

import (
	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
)

// Ledger is the aggregate position of an item: total quantity and total cost.
type Ledger struct {
	Stock   decimal.Decimal `json:"stock"`
	Balance decimal.Decimal `json:"balance"`
}

// LedgerOf sums the remaining quantity and cost of lots.
func LedgerOf(lots []*Lot) Ledger {
	l := Ledger{Stock: decimal.Zero, Balance: decimal.Zero}
	for _, lot := range lots {
		l.Stock = l.Stock.Add(lot.Remaining)
		l.Balance = l.Balance.Add(lot.Value())
	}
	return l
}

// Equal compares numerically (scale-insensitive).
func (l Ledger) Equal(o Ledger) bool {
	return l.Stock.Equal(o.Stock) && l.Balance.Equal(o.Balance)
}

// AddPurchase returns the ledger after receiving quantity at unitPrice.
func (l Ledger) AddPurchase(quantity, unitPrice decimal.Decimal) Ledger {
	return Ledger{
		Stock:   l.Stock.Add(quantity),
		Balance: l.Balance.Add(quantity.Mul(unitPrice)),
	}
}

// SubAllocation returns the ledger after a sale consumed plan.
func (l Ledger) SubAllocation(plan Allocation) Ledger {
	return Ledger{
		Stock:   l.Stock.Sub(plan.Requested),
		Balance: l.Balance.Sub(plan.Cost),
	}
}

// VerifyLedger checks that the cached ledger of an item matches its lots.
func VerifyLedger(itemCode string, cached Ledger, lots []*Lot) error {
	actual := LedgerOf(lots)
	if cached.Equal(actual) {
		return nil
	}
	return apperror.NewConsistencyFault("item ledger diverges from its lots").
		WithDetail("item_code", itemCode).
		WithDetail("cached_stock", cached.Stock.String()).
		WithDetail("cached_balance", cached.Balance.String()).
		WithDetail("lots_stock", actual.Stock.String()).
		WithDetail("lots_balance", actual.Balance.String())
}

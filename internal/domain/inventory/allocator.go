package inventory

import (
	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
)

// Take is the part of one lot that a sale consumes.
type Take struct {
	LotID        id.ID           `json:"lot_id"`
	DocumentCode string          `json:"purchase_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// Cost of the take.
func (t Take) Cost() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}

// Allocation is a FIFO consumption plan. It is computed against a snapshot
// and mutates nothing until applied.
type Allocation struct {
	ItemCode  string          `json:"item_code"`
	Requested decimal.Decimal `json:"requested"`
	Takes     []Take          `json:"takes"`
	Cost      decimal.Decimal `json:"cost"`
}

// UnitCost is the average cost per unit consumed. Requested is always positive.
func (a Allocation) UnitCost() decimal.Decimal {
	return a.Cost.Div(a.Requested)
}

// Allocate plans the consumption of requested units from lots, oldest first.
//
// The lots are sorted by CompareLots regardless of the order they came in.
// If the lots hold less than requested the whole plan fails with
// InsufficientStock; a plan is never partial. Cost is exact.
func Allocate(itemCode string, lots []*Lot, requested decimal.Decimal) (Allocation, error) {
	if !requested.IsPositive() {
		return Allocation{}, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("item_code", itemCode).
			WithDetail("quantity", requested.String())
	}

	ordered := make([]*Lot, len(lots))
	copy(ordered, lots)
	SortLots(ordered)

	plan := Allocation{ItemCode: itemCode, Requested: requested, Cost: decimal.Zero}
	left := requested
	for _, lot := range ordered {
		if left.IsZero() {
			break
		}
		if lot.Exhausted() {
			continue
		}
		take := Take{
			LotID:        lot.ID,
			DocumentCode: lot.DocumentCode,
			Quantity:     decimal.Min(left, lot.Remaining),
			UnitPrice:    lot.UnitPrice,
		}
		plan.Takes = append(plan.Takes, take)
		plan.Cost = plan.Cost.Add(take.Cost())
		left = left.Sub(take.Quantity)
	}

	if left.IsPositive() {
		return Allocation{}, apperror.NewInsufficientStock(itemCode, requested, requested.Sub(left))
	}
	return plan, nil
}

// ApplyTo consumes the plan from an in-memory lot list.
// A take that names an unknown lot is a ConsistencyFault.
func (a Allocation) ApplyTo(lots []*Lot) error {
	byID := make(map[id.ID]*Lot, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
	}
	for _, t := range a.Takes {
		lot, ok := byID[t.LotID]
		if !ok {
			return apperror.NewConsistencyFault("allocation references an unknown lot").
				WithDetail("item_code", a.ItemCode).
				WithDetail("lot_id", t.LotID.String())
		}
		lot.Consume(t.Quantity)
	}
	return nil
}

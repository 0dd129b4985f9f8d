package reports

import (
	"slices"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/inventory"
)

// Replay rebuilds the ledger of itemCode from events.
//
// It keeps its own lot list, independent of the live lot store, and consumes
// it with the same FIFO rule the write path uses. Events before rng.From
// seed the opening composition without emitting rows; events after rng.To
// are ignored. A sale the replayed lots cannot cover is a ConsistencyFault.
func Replay(itemCode string, events []Event, rng DateRange) ([]Row, Summary, error) {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, CompareEvents)

	var (
		lots    []*inventory.Lot
		rows    []Row
		sum     = Summary{InQty: decimal.Zero, OutQty: decimal.Zero}
		opened  bool
		opening = inventory.Ledger{Stock: decimal.Zero, Balance: decimal.Zero}
	)

	for _, ev := range ordered {
		if rng.To != nil && ev.Date.After(*rng.To) {
			break
		}
		inRange := rng.Contains(ev.Date)
		if inRange && !opened {
			opening = inventory.LedgerOf(lots)
			opened = true
		}

		row := Row{
			Date:        ev.Date,
			Description: ev.Description,
			Code:        ev.Code,
			Kind:        ev.Kind,
			InQty:       decimal.Zero,
			InPrice:     decimal.Zero,
			InTotal:     decimal.Zero,
			OutQty:      decimal.Zero,
			OutPrice:    decimal.Zero,
			OutTotal:    decimal.Zero,
		}

		switch ev.Kind {
		case inventory.MovementPurchase:
			lot := &inventory.Lot{
				ID:           ev.DetailID,
				DocumentCode: ev.Code,
				DocumentDate: ev.Date,
				ItemCode:     itemCode,
				Quantity:     ev.Quantity,
				UnitPrice:    ev.UnitPrice,
				Remaining:    ev.Quantity,
			}
			lots = append(lots, lot)
			row.InQty = ev.Quantity
			row.InPrice = ev.UnitPrice
			row.InTotal = ev.Quantity.Mul(ev.UnitPrice)

		case inventory.MovementSale:
			plan, err := inventory.Allocate(itemCode, lots, ev.Quantity)
			if err != nil {
				return nil, Summary{}, replayFault(itemCode, ev, err)
			}
			if err := plan.ApplyTo(lots); err != nil {
				return nil, Summary{}, err
			}
			row.OutQty = ev.Quantity
			row.OutPrice = plan.UnitCost()
			row.OutTotal = plan.Cost

		default:
			return nil, Summary{}, apperror.NewConsistencyFault("unknown history event kind").
				WithDetail("item_code", itemCode).
				WithDetail("kind", ev.Kind)
		}

		if !inRange {
			continue
		}

		ledger := inventory.LedgerOf(lots)
		row.Stock = composition(lots)
		row.BalanceQty = ledger.Stock
		row.Balance = ledger.Balance
		rows = append(rows, row)

		sum.InQty = sum.InQty.Add(row.InQty)
		sum.OutQty = sum.OutQty.Add(row.OutQty)
	}

	if !opened {
		opening = inventory.LedgerOf(lots)
	}
	closing := inventory.LedgerOf(lots)
	sum.OpeningQty = opening.Stock
	sum.OpeningBalance = opening.Balance
	sum.BalanceQty = closing.Stock
	sum.Balance = closing.Balance

	return rows, sum, nil
}

// composition lists the lots that still hold stock, oldest first.
func composition(lots []*inventory.Lot) []Position {
	out := make([]Position, 0, len(lots))
	for _, l := range lots {
		if l.Exhausted() {
			continue
		}
		out = append(out, Position{
			Quantity: l.Remaining,
			Price:    l.UnitPrice,
			Total:    l.Value(),
		})
	}
	return out
}

func replayFault(itemCode string, ev Event, cause error) error {
	fault := apperror.NewConsistencyFault("history sells more than it bought").
		WithDetail("item_code", itemCode).
		WithDetail("sale_code", ev.Code).
		WithDetail("date", ev.Date.Format("2006-01-02")).
		WithDetail("quantity", ev.Quantity.String())
	if appErr, ok := apperror.AsAppError(cause); ok {
		fault.WithDetail("available", appErr.Details["available"])
	}
	return fault.WithCause(cause)
}

package reports_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func purchaseEvent(d int, code string, qty, price string) reports.Event {
	return reports.Event{
		Kind:      inventory.MovementPurchase,
		Date:      day(d),
		Code:      code,
		DetailID:  id.New(),
		Quantity:  dec(qty),
		UnitPrice: dec(price),
	}
}

func saleEvent(d int, code string, qty string) reports.Event {
	return reports.Event{
		Kind:     inventory.MovementSale,
		Date:     day(d),
		Code:     code,
		DetailID: id.New(),
		Quantity: dec(qty),
	}
}

func TestReplay_Item004Scenario(t *testing.T) {
	events := []reports.Event{
		saleEvent(3, "SAL-1", "25"),
		purchaseEvent(2, "PUR-2", "10", "12"),
		purchaseEvent(1, "PUR-1", "20", "10"),
	}

	rows, sum, err := reports.Replay("ITEM004", events, reports.DateRange{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "PUR-1", rows[0].Code)
	assert.Equal(t, "PUR-2", rows[1].Code)
	assert.Len(t, rows[1].Stock, 2)

	last := rows[2]
	assert.Equal(t, inventory.MovementSale, last.Kind)
	assert.True(t, last.OutTotal.Equal(dec("260")), "out_total = %s", last.OutTotal)
	assert.True(t, last.OutPrice.Equal(dec("10.4")), "out_price = %s", last.OutPrice)
	require.Len(t, last.Stock, 1)
	assert.True(t, last.Stock[0].Quantity.Equal(dec("5")))
	assert.True(t, last.Stock[0].Price.Equal(dec("12")))

	assert.True(t, sum.InQty.Equal(dec("30")))
	assert.True(t, sum.OutQty.Equal(dec("25")))
	assert.True(t, sum.BalanceQty.Equal(dec("5")))
	assert.True(t, sum.Balance.Equal(dec("60")))
	assert.True(t, sum.OpeningQty.IsZero())
}

func TestReplay_FIFOCost(t *testing.T) {
	events := []reports.Event{
		purchaseEvent(1, "PUR-1", "10", "5"),
		purchaseEvent(2, "PUR-2", "10", "7"),
		saleEvent(3, "SAL-1", "15"),
	}

	rows, sum, err := reports.Replay("ITEM001", events, reports.DateRange{})
	require.NoError(t, err)

	assert.True(t, rows[2].OutTotal.Equal(dec("85")))
	assert.True(t, sum.Balance.Equal(dec("35")))
}

func TestReplay_SameDayPurchaseBeforeSale(t *testing.T) {
	events := []reports.Event{
		saleEvent(1, "X-1", "4"),
		purchaseEvent(1, "X-1", "4", "3"),
	}

	rows, _, err := reports.Replay("ITEM001", events, reports.DateRange{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, inventory.MovementPurchase, rows[0].Kind)
	assert.Empty(t, rows[1].Stock)
}

func TestReplay_ShortfallIsConsistencyFault(t *testing.T) {
	events := []reports.Event{
		purchaseEvent(1, "PUR-1", "5", "2"),
		saleEvent(2, "SAL-1", "6"),
	}

	_, _, err := reports.Replay("ITEM001", events, reports.DateRange{})
	require.Error(t, err)
	assert.True(t, apperror.IsConsistencyFault(err))
	assert.False(t, apperror.IsInsufficientStock(err))
}

func TestReplay_Idempotent(t *testing.T) {
	events := []reports.Event{
		purchaseEvent(1, "PUR-1", "7.5", "3.3"),
		saleEvent(2, "SAL-1", "2.25"),
		purchaseEvent(2, "PUR-2", "4", "9"),
		saleEvent(5, "SAL-2", "6"),
	}
	rng := reports.DateRange{}

	rows1, sum1, err := reports.Replay("ITEM001", events, rng)
	require.NoError(t, err)
	rows2, sum2, err := reports.Replay("ITEM001", events, rng)
	require.NoError(t, err)

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, sum1, sum2)
}

func TestReplay_RoundTrip(t *testing.T) {
	events := []reports.Event{
		purchaseEvent(1, "PUR-1", "10", "1"),
		saleEvent(2, "SAL-1", "3"),
		purchaseEvent(3, "PUR-2", "5", "2"),
		saleEvent(4, "SAL-2", "11"),
	}

	rows, sum, err := reports.Replay("ITEM001", events, reports.DateRange{})
	require.NoError(t, err)

	net := decimal.Zero
	for _, r := range rows {
		net = net.Add(r.InQty).Sub(r.OutQty)
	}
	assert.True(t, net.Equal(sum.BalanceQty))
	assert.True(t, net.Equal(dec("1")))
}

func TestReplay_RangeSeedsOpening(t *testing.T) {
	events := []reports.Event{
		purchaseEvent(1, "PUR-1", "10", "5"),
		saleEvent(2, "SAL-1", "4"),
		purchaseEvent(5, "PUR-2", "10", "7"),
		saleEvent(6, "SAL-2", "8"),
		purchaseEvent(9, "PUR-3", "1", "100"),
	}
	from, to := day(5), day(6)

	rows, sum, err := reports.Replay("ITEM001", events, reports.DateRange{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PUR-2", rows[0].Code)

	assert.True(t, sum.OpeningQty.Equal(dec("6")))
	assert.True(t, sum.OpeningBalance.Equal(dec("30")))
	assert.True(t, sum.InQty.Equal(dec("10")))
	assert.True(t, sum.OutQty.Equal(dec("8")))
	// 6 from PUR-1 at 5 go first, then 2 from PUR-2 at 7.
	assert.True(t, rows[1].OutTotal.Equal(dec("44")))
	assert.True(t, sum.BalanceQty.Equal(dec("8")))
	assert.True(t, sum.Balance.Equal(dec("56")))
}

func TestReplay_EmptyRangeKeepsOpening(t *testing.T) {
	events := []reports.Event{purchaseEvent(1, "PUR-1", "3", "2")}
	from := day(10)

	rows, sum, err := reports.Replay("ITEM001", events, reports.DateRange{From: &from})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.True(t, sum.OpeningQty.Equal(dec("3")))
	assert.True(t, sum.BalanceQty.Equal(dec("3")))
}

func TestDateRange_Validate(t *testing.T) {
	from, to := day(5), day(4)
	err := reports.DateRange{From: &from, To: &to}.Validate()
	assert.True(t, apperror.IsValidation(err))

	assert.NoError(t, reports.DateRange{From: &from}.Validate())
	assert.NoError(t, reports.DateRange{}.Validate())
}

package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/inventory"
)

func TestLedgerOf(t *testing.T) {
	lots := []*inventory.Lot{
		inventory.NewLot("PUR-1", date(1), "ITEM001", d("20"), d("10")),
		inventory.NewLot("PUR-2", date(2), "ITEM001", d("10"), d("12")),
	}
	lots[0].Consume(d("20"))
	lots[1].Consume(d("5"))

	l := inventory.LedgerOf(lots)
	assert.True(t, l.Stock.Equal(d("5")))
	assert.True(t, l.Balance.Equal(d("60")))
}

func TestLedger_Arithmetic(t *testing.T) {
	l := inventory.LedgerOf(nil).AddPurchase(d("10"), d("5")).AddPurchase(d("10"), d("7"))
	assert.True(t, l.Equal(inventory.Ledger{Stock: d("20"), Balance: d("120")}))

	lots := []*inventory.Lot{
		inventory.NewLot("PUR-1", date(1), "ITEM001", d("10"), d("5")),
		inventory.NewLot("PUR-2", date(2), "ITEM001", d("10"), d("7")),
	}
	plan, err := inventory.Allocate("ITEM001", lots, d("15"))
	require.NoError(t, err)

	after := l.SubAllocation(plan)
	assert.True(t, after.Equal(inventory.Ledger{Stock: d("5"), Balance: d("35")}))
}

func TestVerifyLedger(t *testing.T) {
	lots := []*inventory.Lot{inventory.NewLot("PUR-1", date(1), "ITEM001", d("2"), d("3"))}

	assert.NoError(t, inventory.VerifyLedger("ITEM001", inventory.Ledger{Stock: d("2.00"), Balance: d("6")}, lots))

	err := inventory.VerifyLedger("ITEM001", inventory.Ledger{Stock: d("2"), Balance: d("7")}, lots)
	require.Error(t, err)
	assert.True(t, apperror.IsConsistencyFault(err))
}

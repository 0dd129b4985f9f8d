package reports_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
	"fifostock/internal/infrastructure/storage/memory"
)

type world struct {
	store     *memory.Store
	purchases *purchase.Service
	sales     *sale.Service
	reports   *reports.Service
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := memory.New()
	rec := inventory.NewRecorder(store, store)
	require.NoError(t, store.Items().Create(context.Background(), item.NewItem("ITEM004", "Bolt", "pcs", "")))
	return &world{
		store:     store,
		purchases: purchase.NewService(store.Purchases(), store, store, rec),
		sales:     sale.NewService(store.Sales(), store, store, rec),
		reports:   reports.NewService(store.Items(), store, store),
	}
}

func (w *world) buy(t *testing.T, code string, d int, qty, price string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.purchases.Create(ctx, purchase.NewPurchase(code, day(d), "buy "+code)))
	_, err := w.purchases.AddDetail(ctx, code, purchase.Line{ItemCode: "ITEM004", Quantity: dec(qty), UnitPrice: dec(price)})
	require.NoError(t, err)
}

func (w *world) sell(t *testing.T, code string, d int, qty string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.sales.Create(ctx, sale.NewSale(code, day(d), "sell "+code)))
	_, err := w.sales.AddDetail(ctx, code, sale.Line{ItemCode: "ITEM004", Quantity: dec(qty)})
	require.NoError(t, err)
}

func TestService_ItemLedger(t *testing.T) {
	w := newWorld(t)
	w.buy(t, "PUR-A", 1, "20", "10")
	w.buy(t, "PUR-B", 2, "10", "12")
	w.sell(t, "SAL-1", 3, "25")

	ledger, err := w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, "ITEM004", ledger.ItemCode)
	assert.Equal(t, "Bolt", ledger.Name)
	require.Len(t, ledger.Rows, 3)
	assert.Equal(t, "buy PUR-A", ledger.Rows[0].Description)
	assert.True(t, ledger.Rows[2].OutTotal.Equal(dec("260")))

	it, err := w.store.Items().GetByCode(context.Background(), "ITEM004")
	require.NoError(t, err)

	// The replay agrees with the live ledger.
	net := decimal.Zero
	for _, r := range ledger.Rows {
		net = net.Add(r.InQty).Sub(r.OutQty)
	}
	assert.True(t, net.Equal(it.Stock))
	assert.True(t, ledger.Summary.Balance.Equal(it.Balance))

	again, err := w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, ledger, again)
}

func TestService_ItemLedgerBackdatedPurchase(t *testing.T) {
	w := newWorld(t)
	w.buy(t, "PUR-B", 2, "10", "12")
	w.buy(t, "PUR-A", 1, "20", "10")
	w.sell(t, "SAL-1", 3, "25")

	ledger, err := w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{})
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 3)
	assert.Equal(t, "PUR-A", ledger.Rows[0].Code)
	assert.True(t, ledger.Rows[2].OutTotal.Equal(dec("260")))

	it, err := w.store.Items().GetByCode(context.Background(), "ITEM004")
	require.NoError(t, err)
	assert.True(t, ledger.Summary.BalanceQty.Equal(it.Stock))
	assert.True(t, ledger.Summary.Balance.Equal(it.Balance))
}

func TestService_ItemLedgerRange(t *testing.T) {
	w := newWorld(t)
	w.buy(t, "PUR-A", 1, "20", "10")
	w.sell(t, "SAL-1", 4, "5")
	w.buy(t, "PUR-B", 8, "10", "12")

	to := day(4)
	ledger, err := w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{To: &to})
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 2)
	assert.True(t, ledger.Summary.BalanceQty.Equal(dec("15")))

	from := day(5)
	ledger, err = w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 1)
	assert.True(t, ledger.Summary.OpeningQty.Equal(dec("15")))
	assert.True(t, ledger.Summary.OpeningBalance.Equal(dec("150")))
}

func TestService_ItemLedgerErrors(t *testing.T) {
	w := newWorld(t)

	_, err := w.reports.ItemLedger(context.Background(), "MISSING", reports.DateRange{})
	assert.True(t, apperror.IsNotFound(err))

	from, to := day(9), day(1)
	_, err = w.reports.ItemLedger(context.Background(), "ITEM004", reports.DateRange{From: &from, To: &to})
	assert.True(t, apperror.IsValidation(err))
}

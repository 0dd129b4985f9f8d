package documents_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/memory"
)

type env struct {
	store     *memory.Store
	purchases *purchase.Service
	sales     *sale.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New(memory.WithLockTimeout(100 * time.Millisecond))
	rec := inventory.NewRecorder(store, store)
	require.NoError(t, store.Items().Create(context.Background(), item.NewItem("ITEM001", "Nail", "pcs", "")))
	return &env{
		store:     store,
		purchases: purchase.NewService(store.Purchases(), store, store, rec),
		sales:     sale.NewService(store.Sales(), store, store, rec),
	}
}

func at(day int) time.Time {
	return time.Date(2024, time.May, day, 15, 30, 0, 0, time.UTC)
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestHeaderService_CreateGeneratesCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := purchase.NewPurchase("", at(1), "")
	require.NoError(t, e.purchases.Create(ctx, first))
	second := purchase.NewPurchase("", at(2), "")
	require.NoError(t, e.purchases.Create(ctx, second))
	s := sale.NewSale("", at(2), "")
	require.NoError(t, e.sales.Create(ctx, s))

	assert.Equal(t, "PUR-2024-00001", first.Code)
	assert.Equal(t, "PUR-2024-00002", second.Code)
	assert.Equal(t, "SAL-2024-00001", s.Code)

	// Business dates carry no time of day.
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), first.Date)
}

func TestHeaderService_CreateRequiresDate(t *testing.T) {
	e := newEnv(t)
	err := e.purchases.Create(context.Background(), purchase.NewPurchase("PUR-1", time.Time{}, ""))
	assert.True(t, apperror.IsValidation(err))
}

func TestHeaderService_GetAttachesDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-1", at(1), "first")))
	_, err := e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("3"), UnitPrice: qty("2")})
	require.NoError(t, err)
	_, err = e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("1"), UnitPrice: qty("4")})
	require.NoError(t, err)

	p, err := e.purchases.Get(ctx, "PUR-1")
	require.NoError(t, err)
	require.Len(t, p.Lots, 2)
	assert.True(t, p.Lots[0].Quantity.Equal(qty("3")))
	assert.Equal(t, p.Date, p.Lots[0].DocumentDate)

	it, err := e.store.Items().GetByCode(ctx, "ITEM001")
	require.NoError(t, err)
	assert.True(t, it.Balance.Equal(qty("10")))
}

func TestHeaderService_HistoryIsFrozen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-1", at(1), "")))
	_, err := e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("3"), UnitPrice: qty("2")})
	require.NoError(t, err)

	later := at(9)
	_, err = e.purchases.Update(ctx, "PUR-1", documents.Patch{Date: &later})
	assert.Equal(t, apperror.CodeConflict, code(err))

	err = e.purchases.Delete(ctx, "PUR-1")
	assert.Equal(t, apperror.CodeConflict, code(err))

	desc := "renamed"
	p, err := e.purchases.Update(ctx, "PUR-1", documents.Patch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Description)
	assert.Equal(t, 2, p.Version)
}

func TestHeaderService_EmptyHeaderCanChange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.sales.Create(ctx, sale.NewSale("SAL-1", at(1), "")))

	later := at(9)
	s, err := e.sales.Update(ctx, "SAL-1", documents.Patch{Date: &later, Version: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Date.Day())

	_, err = e.sales.Update(ctx, "SAL-1", documents.Patch{Date: &later, Version: 1})
	assert.Equal(t, apperror.CodeConcurrentModified, code(err))

	require.NoError(t, e.sales.Delete(ctx, "SAL-1"))
	_, err = e.sales.Get(ctx, "SAL-1")
	assert.True(t, apperror.IsNotFound(err))

	res, err := e.sales.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestSale_AddDetail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-1", at(1), "")))
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-2", at(2), "")))
	_, err := e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("10"), UnitPrice: qty("5")})
	require.NoError(t, err)
	_, err = e.purchases.AddDetail(ctx, "PUR-2", purchase.Line{ItemCode: "ITEM001", Quantity: qty("10"), UnitPrice: qty("7")})
	require.NoError(t, err)

	require.NoError(t, e.sales.Create(ctx, sale.NewSale("SAL-1", at(3), "")))
	res, err := e.sales.AddDetail(ctx, "SAL-1", sale.Line{ItemCode: "ITEM001", Quantity: qty("15")})
	require.NoError(t, err)
	assert.True(t, res.Allocation.Cost.Equal(qty("85")))
	assert.True(t, res.Ledger.Stock.Equal(qty("5")))

	_, err = e.sales.AddDetail(ctx, "SAL-1", sale.Line{ItemCode: "ITEM001", Quantity: qty("6")})
	assert.True(t, apperror.IsInsufficientStock(err))

	s, err := e.sales.Get(ctx, "SAL-1")
	require.NoError(t, err)
	require.Len(t, s.Consumptions, 1)
	assert.True(t, s.Consumptions[0].Quantity.Equal(qty("15")))

	_, err = e.sales.AddDetail(ctx, "NOPE", sale.Line{ItemCode: "ITEM001", Quantity: qty("1")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestPurchase_AddDetailWaitsForHeader(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-1", at(1), "")))

	locked, release := make(chan struct{}), make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- e.store.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := e.store.Purchases().GetForUpdate(ctx, "PUR-1")
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	_, err := e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("1"), UnitPrice: qty("1")})
	close(release)
	require.NoError(t, <-done)
	assert.True(t, apperror.IsContentionTimeout(err))
}

func TestPurchase_LinesOfDifferentItemsShareHeader(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.store.Items().Create(ctx, item.NewItem("ITEM002", "Screw", "pcs", "")))
	require.NoError(t, e.purchases.Create(ctx, purchase.NewPurchase("PUR-1", at(1), "")))

	// An open line of ITEM002 holds the header while ITEM001 is recorded.
	locked, release := make(chan struct{}), make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- e.store.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := e.store.Purchases().GetForShare(ctx, "PUR-1")
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	_, err := e.purchases.AddDetail(ctx, "PUR-1", purchase.Line{ItemCode: "ITEM001", Quantity: qty("1"), UnitPrice: qty("1")})
	assert.NoError(t, err)

	desc := "late"
	_, err = e.purchases.Update(ctx, "PUR-1", documents.Patch{Description: &desc})
	assert.True(t, apperror.IsContentionTimeout(err), "header edits wait for open lines")

	close(release)
	require.NoError(t, <-done)
}

func code(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

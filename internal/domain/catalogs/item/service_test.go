package item_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/infrastructure/storage/memory"
)

func newService() *item.Service {
	store := memory.New()
	return item.NewService(store.Items(), store)
}

func strPtr(s string) *string { return &s }

func TestService_CreateZeroesLedger(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	it := item.NewItem(" ITEM001 ", "Nail", "pcs", "steel")
	it.Stock = decimal.NewFromInt(50)
	require.NoError(t, svc.Create(ctx, it))

	got, err := svc.Get(ctx, "ITEM001")
	require.NoError(t, err)
	assert.True(t, got.Stock.IsZero())
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, 1, got.Version)
}

func TestService_CreateValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		item *item.Item
	}{
		{"missing code", item.NewItem("", "Nail", "pcs", "")},
		{"code with slash", item.NewItem("A/B", "Nail", "pcs", "")},
		{"missing name", item.NewItem("ITEM001", "", "pcs", "")},
		{"missing unit", item.NewItem("ITEM001", "Nail", " ", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.item)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, item.NewItem("ITEM001", "Nail", "pcs", "")))
	err := svc.Create(ctx, item.NewItem("ITEM001", "Screw", "pcs", ""))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Update(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, item.NewItem("ITEM001", "Nail", "pcs", "")))

	updated, err := svc.Update(ctx, "ITEM001", item.Patch{Name: strPtr("Big nail"), Version: 1})
	require.NoError(t, err)
	assert.Equal(t, "Big nail", updated.Name)
	assert.Equal(t, "pcs", updated.Unit)
	assert.Equal(t, 2, updated.Version)

	_, err = svc.Update(ctx, "ITEM001", item.Patch{Unit: strPtr("kg"), Version: 1})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConcurrentModified, appErr.Code)
	assert.True(t, apperror.Retryable(err))

	_, err = svc.Update(ctx, "ITEM001", item.Patch{Unit: strPtr("")})
	assert.True(t, apperror.IsValidation(err))

	got, err := svc.Get(ctx, "ITEM001")
	require.NoError(t, err)
	assert.Equal(t, "pcs", got.Unit)
	assert.Equal(t, 2, got.Version)
}

func TestService_DeleteHidesItem(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, item.NewItem("ITEM001", "Nail", "pcs", "")))
	require.NoError(t, svc.Create(ctx, item.NewItem("ITEM002", "Screw", "pcs", "")))

	require.NoError(t, svc.Delete(ctx, "ITEM001"))

	_, err := svc.Get(ctx, "ITEM001")
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, "ITEM001")))

	res, err := svc.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "ITEM002", res.Items[0].Code)
	assert.EqualValues(t, 1, res.TotalCount)
}

func TestService_ListSearchAndPaging(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for _, code := range []string{"ITEM003", "ITEM001", "ITEM002", "BOLT01"} {
		require.NoError(t, svc.Create(ctx, item.NewItem(code, "Thing "+code, "pcs", "")))
	}

	res, err := svc.List(ctx, domain.ListFilter{Search: "item", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "ITEM001", res.Items[0].Code)
	assert.Equal(t, "ITEM002", res.Items[1].Code)

	res, err = svc.List(ctx, domain.ListFilter{Search: "item", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "ITEM003", res.Items[0].Code)
}

package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

var (
	_ item.Repository      = (*ItemRepo)(nil)
	_ inventory.ItemSource = (*ItemRepo)(nil)
)

// ItemRepo persists items in cat_items.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates an item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager, "item", itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// Update writes the descriptive columns. Stock and balance belong to LockItem holders.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.UpdateColumns(ctx, it, "name", "unit", "description")
}

// Delete soft-deletes an item.
func (r *ItemRepo) Delete(ctx context.Context, code string) error {
	return r.SetDeletionMark(ctx, code)
}

// ItemCodes returns the codes of all active items, ordered.
func (r *ItemRepo) ItemCodes(ctx context.Context) ([]string, error) {
	sql, args, err := r.Builder().
		Select("code").
		From(itemTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var codes []string
	if err := pgxscan.Select(ctx, r.Querier(ctx), &codes, sql, args...); err != nil {
		return nil, fmt.Errorf("list item codes: %w", err)
	}
	return codes, nil
}

// LockItem selects an active item FOR UPDATE, waiting at most timeout.
// It must run inside a transaction.
func (r *ItemRepo) LockItem(ctx context.Context, code string, timeout time.Duration) (*item.Item, error) {
	if err := r.txManager.SetLockTimeout(ctx, timeout); err != nil {
		return nil, err
	}
	it, err := r.GetForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateLedger overwrites the cached stock and balance of an item.
func (r *ItemRepo) UpdateLedger(ctx context.Context, code string, ledger inventory.Ledger) error {
	sql, args, err := r.Builder().
		Update(itemTable).
		Set("stock", ledger.Stock).
		Set("balance", ledger.Balance).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build ledger update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update ledger: %w", postgres.MapError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", code)
	}
	return nil
}

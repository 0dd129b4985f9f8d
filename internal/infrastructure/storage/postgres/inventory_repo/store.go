// Package inventory_repo provides the PostgreSQL lot store used by the inventory recorder.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/postgres"
)

const (
	lotsTable  = "doc_purchase_lots"
	linesTable = "doc_sale_lines"
)

// ItemLedgers is the part of the item repository the store delegates to.
type ItemLedgers interface {
	LockItem(ctx context.Context, code string, timeout time.Duration) (*item.Item, error)
	UpdateLedger(ctx context.Context, code string, ledger inventory.Ledger) error
}

var _ inventory.Store = (*Store)(nil)

// Store implements inventory.Store.
type Store struct {
	txManager *postgres.TxManager
	items     ItemLedgers
	builder   squirrel.StatementBuilderType
	lotCols   []string
	lineCols  []string
}

// NewStore creates a lot store.
func NewStore(txManager *postgres.TxManager, items ItemLedgers) *Store {
	return &Store{
		txManager: txManager,
		items:     items,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		lotCols:   postgres.ExtractDBColumns[inventory.Lot](),
		lineCols:  postgres.ExtractDBColumns[inventory.Consumption](),
	}
}

// LockItem implements inventory.Store.
func (s *Store) LockItem(ctx context.Context, code string, timeout time.Duration) (*item.Item, error) {
	return s.items.LockItem(ctx, code, timeout)
}

// UpdateLedger implements inventory.Store.
func (s *Store) UpdateLedger(ctx context.Context, itemCode string, ledger inventory.Ledger) error {
	return s.items.UpdateLedger(ctx, itemCode, ledger)
}

func (s *Store) lotsQuery(itemCode string) squirrel.SelectBuilder {
	return s.builder.
		Select(s.lotCols...).
		From(lotsTable).
		Where(squirrel.Eq{"item_code": itemCode}).
		Where(squirrel.Gt{"remaining_quantity": 0}).
		OrderBy("date", "purchase_code", "id")
}

// LotsFor returns the lots of an item that still hold stock, oldest first.
func (s *Store) LotsFor(ctx context.Context, itemCode string) ([]*inventory.Lot, error) {
	sql, args, err := s.lotsQuery(itemCode).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []*inventory.Lot
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	return lots, nil
}

// InsertLot implements inventory.Store.
func (s *Store) InsertLot(ctx context.Context, lot *inventory.Lot) error {
	sql, args, err := s.builder.Insert(lotsTable).
		Columns(s.lotCols...).
		Values(lot.ID, lot.DocumentCode, lot.DocumentDate, lot.ItemCode,
			lot.Quantity, lot.UnitPrice, lot.Remaining, lot.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lot: %w", postgres.MapError(err))
	}
	return nil
}

// ApplyConsumption decreases the remaining quantity of a lot.
// The guard lives in the WHERE clause, so a lot that cannot cover amount is
// left untouched and reported as a fault.
func (s *Store) ApplyConsumption(ctx context.Context, lotID id.ID, amount decimal.Decimal) error {
	sql, args, err := s.builder.Update(lotsTable).
		Set("remaining_quantity", squirrel.Expr("remaining_quantity - ?", amount)).
		Where(squirrel.Eq{"id": lotID}).
		Where(squirrel.GtOrEq{"remaining_quantity": amount}).
		Where(squirrel.Expr("?::numeric > 0", amount)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consumption: %w", err)
	}

	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply consumption: %w", postgres.MapError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConsistencyFault("lot cannot cover consumption").
			WithDetail("lot_id", lotID.String()).
			WithDetail("amount", amount.String())
	}
	return nil
}

// InsertConsumption implements inventory.Store.
func (s *Store) InsertConsumption(ctx context.Context, c *inventory.Consumption) error {
	sql, args, err := s.builder.Insert(linesTable).
		Columns(s.lineCols...).
		Values(c.ID, c.DocumentCode, c.DocumentDate, c.ItemCode, c.Quantity, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale line: %w", postgres.MapError(err))
	}
	return nil
}

// latestMovementQuery orders by the history key of inventory.CompareMovements:
// codes compare bytewise like Go strings and 'sale' sorts after 'purchase'.
// An empty $2 matches both kinds.
const latestMovementQuery = `
	SELECT date, code, kind FROM (
		SELECT date, purchase_code AS code, 'purchase' AS kind
		FROM doc_purchase_lots WHERE item_code = $1
		UNION ALL
		SELECT date, sale_code AS code, 'sale' AS kind
		FROM doc_sale_lines WHERE item_code = $1
	) m
	WHERE $2::text = '' OR kind = $2::text
	ORDER BY date DESC, code COLLATE "C" DESC, kind DESC
	LIMIT 1`

// LatestMovement implements inventory.Store.
func (s *Store) LatestMovement(ctx context.Context, itemCode, kind string) (inventory.MovementKey, bool, error) {
	var key inventory.MovementKey
	err := pgxscan.Get(ctx, s.txManager.GetQuerier(ctx), &key, latestMovementQuery, itemCode, kind)
	if pgxscan.NotFound(err) {
		return key, false, nil
	}
	if err != nil {
		return key, false, fmt.Errorf("select latest movement: %w", err)
	}
	return key, true, nil
}

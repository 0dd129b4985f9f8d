// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
	"fifostock/internal/infrastructure/storage/postgres"
)

var _ reports.HistorySource = (*HistoryRepo)(nil)

// HistoryRepo reads the purchase lots and sale lines of an item as report events.
type HistoryRepo struct {
	txManager *postgres.TxManager
}

// NewHistoryRepo creates a history repository.
func NewHistoryRepo(txManager *postgres.TxManager) *HistoryRepo {
	return &HistoryRepo{txManager: txManager}
}

// historyQuery selects both kinds of detail lines with the description of
// their header. $2 is the optional upper date bound.
const historyQuery = `
	SELECT $3::text AS kind, l.date, l.purchase_code AS code, p.description,
	       l.id AS detail_id, l.quantity, l.unit_price
	FROM doc_purchase_lots l
	JOIN doc_purchases p ON p.code = l.purchase_code
	WHERE l.item_code = $1 AND ($2::date IS NULL OR l.date <= $2::date)

	UNION ALL

	SELECT $4::text AS kind, s.date, s.sale_code AS code, h.description,
	       s.id AS detail_id, s.quantity, 0::numeric AS unit_price
	FROM doc_sale_lines s
	JOIN doc_sales h ON h.code = s.sale_code
	WHERE s.item_code = $1 AND ($2::date IS NULL OR s.date <= $2::date)
`

// Events implements reports.HistorySource.
func (r *HistoryRepo) Events(ctx context.Context, itemCode string, to *time.Time) ([]reports.Event, error) {
	var events []reports.Event
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &events, historyQuery,
		itemCode, to, inventory.MovementPurchase, inventory.MovementSale)
	if err != nil {
		return nil, fmt.Errorf("select history of %s: %w", itemCode, err)
	}
	return events, nil
}

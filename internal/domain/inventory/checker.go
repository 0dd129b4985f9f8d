package inventory

import (
	"context"
	"fmt"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/tx"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/pkg/logger"
)

// ItemSource lists and reads items for a consistency check.
type ItemSource interface {
	// ItemCodes returns the codes of all active items, ordered.
	ItemCodes(ctx context.Context) ([]string, error)
	GetByCode(ctx context.Context, code string) (*item.Item, error)
}

// CheckReport summarizes one pass over all items.
type CheckReport struct {
	Checked int
	Faults  []error
}

// Checker verifies cached item ledgers against the live lots.
// It only reads, and each item is checked in its own snapshot.
type Checker struct {
	items     ItemSource
	store     Store
	txManager tx.SnapshotManager
}

// NewChecker creates a Checker.
func NewChecker(items ItemSource, store Store, txManager tx.SnapshotManager) *Checker {
	return &Checker{items: items, store: store, txManager: txManager}
}

// CheckItem returns a ConsistencyFault if the ledger of itemCode diverges
// from its lots.
func (c *Checker) CheckItem(ctx context.Context, itemCode string) error {
	return c.txManager.Snapshot(ctx, func(ctx context.Context) error {
		it, err := c.items.GetByCode(ctx, itemCode)
		if err != nil {
			return err
		}
		lots, err := c.store.LotsFor(ctx, itemCode)
		if err != nil {
			return fmt.Errorf("load lots: %w", err)
		}
		return VerifyLedger(itemCode, Ledger{Stock: it.Stock, Balance: it.Balance}, lots)
	})
}

// CheckAll checks every active item. Faults are collected and logged; any
// other error stops the pass.
func (c *Checker) CheckAll(ctx context.Context) (CheckReport, error) {
	var report CheckReport

	codes, err := c.items.ItemCodes(ctx)
	if err != nil {
		return report, fmt.Errorf("list items: %w", err)
	}

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := c.CheckItem(ctx, code)
		switch {
		case err == nil:
		case apperror.IsConsistencyFault(err):
			logger.Error(ctx, "item ledger check failed",
				"item_code", code,
				"severity", "consistency",
				"error", err,
			)
			report.Faults = append(report.Faults, err)
		case apperror.IsNotFound(err):
			// deleted since listing
			continue
		default:
			return report, fmt.Errorf("check %s: %w", code, err)
		}
		report.Checked++
	}
	return report, nil
}

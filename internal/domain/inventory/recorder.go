package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/tx"
	"fifostock/pkg/logger"
)

var tracer = otel.Tracer("fifostock/inventory")

// DefaultLockTimeout bounds how long a writer waits for an item.
const DefaultLockTimeout = 5 * time.Second

// PurchaseEntry is a purchase line to record.
type PurchaseEntry struct {
	DocumentCode string
	DocumentDate time.Time
	ItemCode     string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
}

// SaleEntry is a sale line to record.
type SaleEntry struct {
	DocumentCode string
	DocumentDate time.Time
	ItemCode     string
	Quantity     decimal.Decimal
}

// SaleResult is what a committed sale consumed.
type SaleResult struct {
	Consumption *Consumption
	Allocation  Allocation
	Ledger      Ledger
}

// Recorder records purchases and sales against the lot store.
// Each call is one atomic unit scoped to a single item.
type Recorder struct {
	store       Store
	txManager   tx.Manager
	locker      Locker
	audit       AuditSink
	lockTimeout time.Duration
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLocker adds a lock taken before each transaction.
func WithLocker(l Locker) Option {
	return func(r *Recorder) { r.locker = l }
}

// WithAudit records every committed movement to sink.
func WithAudit(sink AuditSink) Option {
	return func(r *Recorder) { r.audit = sink }
}

// WithLockTimeout overrides DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.lockTimeout = d
		}
	}
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, txManager tx.Manager, opts ...Option) *Recorder {
	r := &Recorder{
		store:       store,
		txManager:   txManager,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordPurchase creates a lot and adds it to the item ledger.
func (r *Recorder) RecordPurchase(ctx context.Context, e PurchaseEntry) (*Lot, error) {
	if err := validateLine(e.DocumentCode, e.DocumentDate, e.ItemCode, e.Quantity); err != nil {
		return nil, err
	}
	if !e.UnitPrice.IsPositive() {
		return nil, apperror.NewValidation("unit price must be positive").
			WithDetail("field", "unit_price").
			WithDetail("unit_price", e.UnitPrice.String())
	}

	ctx, span := tracer.Start(ctx, "inventory.record_purchase", trace.WithAttributes(
		attribute.String("item.code", e.ItemCode),
		attribute.String("document.code", e.DocumentCode),
	))
	defer span.End()

	key := MovementKey{Date: e.DocumentDate, DocumentCode: e.DocumentCode, Kind: MovementPurchase}
	var lot *Lot
	err := r.withItem(ctx, e.ItemCode, key, func(ctx context.Context, before Ledger, _ []*Lot) (Ledger, error) {
		lot = NewLot(e.DocumentCode, e.DocumentDate, e.ItemCode, e.Quantity, e.UnitPrice)
		if err := r.store.InsertLot(ctx, lot); err != nil {
			return Ledger{}, fmt.Errorf("insert lot: %w", err)
		}

		after := before.AddPurchase(e.Quantity, e.UnitPrice)
		return after, r.record(ctx, AuditEntry{
			Kind:         MovementPurchase,
			ItemCode:     e.ItemCode,
			DocumentCode: e.DocumentCode,
			DetailID:     lot.ID,
			Quantity:     e.Quantity,
			Cost:         e.Quantity.Mul(e.UnitPrice),
			Before:       before,
			After:        after,
		})
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"item_code", e.ItemCode,
		"purchase_code", e.DocumentCode,
		"quantity", e.Quantity.String(),
		"unit_price", e.UnitPrice.String(),
	)
	return lot, nil
}

// RecordSale consumes lots FIFO and removes their cost from the item ledger.
// On InsufficientStock nothing is written.
func (r *Recorder) RecordSale(ctx context.Context, e SaleEntry) (*SaleResult, error) {
	if err := validateLine(e.DocumentCode, e.DocumentDate, e.ItemCode, e.Quantity); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "inventory.record_sale", trace.WithAttributes(
		attribute.String("item.code", e.ItemCode),
		attribute.String("document.code", e.DocumentCode),
	))
	defer span.End()

	key := MovementKey{Date: e.DocumentDate, DocumentCode: e.DocumentCode, Kind: MovementSale}
	var res SaleResult
	err := r.withItem(ctx, e.ItemCode, key, func(ctx context.Context, before Ledger, lots []*Lot) (Ledger, error) {
		plan, err := Allocate(e.ItemCode, lots, e.Quantity)
		if err != nil {
			return Ledger{}, err
		}

		// The plan must leave the lots exactly where the ledger says.
		projected := CloneLots(lots)
		if err := plan.ApplyTo(projected); err != nil {
			return Ledger{}, err
		}
		after := before.SubAllocation(plan)
		if err := VerifyLedger(e.ItemCode, after, projected); err != nil {
			return Ledger{}, err
		}

		for _, t := range plan.Takes {
			if err := r.store.ApplyConsumption(ctx, t.LotID, t.Quantity); err != nil {
				return Ledger{}, err
			}
		}

		c := NewConsumption(e.DocumentCode, e.DocumentDate, e.ItemCode, e.Quantity)
		if err := r.store.InsertConsumption(ctx, c); err != nil {
			return Ledger{}, fmt.Errorf("insert consumption: %w", err)
		}

		res = SaleResult{Consumption: c, Allocation: plan, Ledger: after}
		return after, r.record(ctx, AuditEntry{
			Kind:         MovementSale,
			ItemCode:     e.ItemCode,
			DocumentCode: e.DocumentCode,
			DetailID:     c.ID,
			Quantity:     e.Quantity,
			Cost:         plan.Cost,
			Takes:        plan.Takes,
			Before:       before,
			After:        after,
		})
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"item_code", e.ItemCode,
		"sale_code", e.DocumentCode,
		"quantity", e.Quantity.String(),
		"cost", res.Allocation.Cost.String(),
		"lots", len(res.Allocation.Takes),
	)
	return &res, nil
}

// withItem runs mutate inside the exclusive scope of one item.
//
// It locks the item, rejects a movement replay would order differently,
// loads its open lots, checks the cached ledger against them,
// lets mutate write the movement, then stores the ledger mutate returns.
// Any error rolls the whole unit back.
func (r *Recorder) withItem(ctx context.Context, itemCode string, key MovementKey,
	mutate func(ctx context.Context, before Ledger, lots []*Lot) (Ledger, error),
) error {
	if r.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
		unlock, err := r.locker.Lock(lockCtx, itemCode)
		cancel()
		if err != nil {
			return err
		}
		defer unlock()
	}

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := r.store.LockItem(ctx, itemCode, r.lockTimeout)
		if err != nil {
			return err
		}

		if err := r.checkOrder(ctx, itemCode, key); err != nil {
			return err
		}

		lots, err := r.store.LotsFor(ctx, itemCode)
		if err != nil {
			return fmt.Errorf("load lots: %w", err)
		}

		before := Ledger{Stock: it.Stock, Balance: it.Balance}
		if err := VerifyLedger(itemCode, before, lots); err != nil {
			return err
		}

		after, err := mutate(ctx, before, lots)
		if err != nil {
			return err
		}
		if after.Stock.IsNegative() || after.Balance.IsNegative() {
			return apperror.NewConsistencyFault("item ledger would go negative").
				WithDetail("item_code", itemCode).
				WithDetail("stock", after.Stock.String()).
				WithDetail("balance", after.Balance.String())
		}
		return r.store.UpdateLedger(ctx, itemCode, after)
	})

	if apperror.IsConsistencyFault(err) {
		logger.Error(ctx, "inventory consistency fault",
			"item_code", itemCode,
			"severity", "consistency",
			"error", err,
		)
	}
	return err
}

// checkOrder keeps replay consuming the same lots the write path consumed.
// A sale must not land before any movement of the item. A purchase may be
// back-dated among other purchases but not before the item's latest sale.
func (r *Recorder) checkOrder(ctx context.Context, itemCode string, key MovementKey) error {
	var after string
	if key.Kind == MovementPurchase {
		after = MovementSale
	}
	latest, ok, err := r.store.LatestMovement(ctx, itemCode, after)
	if err != nil {
		return fmt.Errorf("load latest movement: %w", err)
	}
	if !ok || CompareMovements(key, latest) >= 0 {
		return nil
	}
	msg := "movement is dated before the latest movement of the item"
	if after == MovementSale {
		msg = "purchase is dated before the latest sale of the item"
	}
	return apperror.NewConflict(msg).
		WithDetail("item_code", itemCode).
		WithDetail("date", key.Date.Format("2006-01-02")).
		WithDetail("document_code", key.DocumentCode).
		WithDetail("latest_date", latest.Date.Format("2006-01-02")).
		WithDetail("latest_document_code", latest.DocumentCode)
}

func (r *Recorder) record(ctx context.Context, entry AuditEntry) error {
	if r.audit == nil {
		return nil
	}
	if err := r.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("audit %s: %w", entry.Kind, err)
	}
	return nil
}

func validateLine(documentCode string, documentDate time.Time, itemCode string, quantity decimal.Decimal) error {
	switch {
	case documentCode == "":
		return apperror.NewValidation("document code is required").WithDetail("field", "document_code")
	case documentDate.IsZero():
		return apperror.NewValidation("document date is required").WithDetail("field", "date")
	case itemCode == "":
		return apperror.NewValidation("item is required").WithDetail("field", "item")
	case !quantity.IsPositive():
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("quantity", quantity.String())
	}
	return nil
}

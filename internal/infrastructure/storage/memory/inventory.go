package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
)

var _ inventory.Store = (*Store)(nil)

// LockItem implements inventory.Store.
func (s *Store) LockItem(ctx context.Context, code string, timeout time.Duration) (*item.Item, error) {
	if err := s.acquire(ctx, "item:"+code, lockExclusive, timeout); err != nil {
		return nil, contention(err, code)
	}
	return s.Items().GetByCode(ctx, code)
}

// LotsFor implements inventory.Store.
func (s *Store) LotsFor(ctx context.Context, itemCode string) ([]*inventory.Lot, error) {
	var out []*inventory.Lot
	err := s.read(ctx, func(st *state) error {
		for _, l := range st.lots {
			if l.ItemCode == itemCode && !l.Exhausted() {
				c := *l
				out = append(out, &c)
			}
		}
		return nil
	})
	inventory.SortLots(out)
	return out, err
}

// InsertLot implements inventory.Store.
func (s *Store) InsertLot(ctx context.Context, lot *inventory.Lot) error {
	return s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.lots[lot.ID]; ok {
			return apperror.NewDuplicate("lot", "id", lot.ID.String())
		}
		c := *lot
		st.lots[lot.ID] = &c
		t.onRollback(func(st *state) { delete(st.lots, lot.ID) })
		return nil
	})
}

// ApplyConsumption implements inventory.Store.
func (s *Store) ApplyConsumption(ctx context.Context, lotID id.ID, amount decimal.Decimal) error {
	return s.write(ctx, func(st *state, t *txState) error {
		lot, ok := st.lots[lotID]
		if !ok || !amount.IsPositive() || amount.GreaterThan(lot.Remaining) {
			fault := apperror.NewConsistencyFault("lot cannot cover consumption").
				WithDetail("lot_id", lotID.String()).
				WithDetail("amount", amount.String())
			if ok {
				fault.WithDetail("remaining", lot.Remaining.String())
			}
			return fault
		}
		lot.Consume(amount)
		t.onRollback(func(st *state) {
			if l, ok := st.lots[lotID]; ok {
				l.Remaining = l.Remaining.Add(amount)
			}
		})
		return nil
	})
}

// InsertConsumption implements inventory.Store.
func (s *Store) InsertConsumption(ctx context.Context, c *inventory.Consumption) error {
	return s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.consumptions[c.ID]; ok {
			return apperror.NewDuplicate("consumption", "id", c.ID.String())
		}
		cc := *c
		st.consumptions[c.ID] = &cc
		t.onRollback(func(st *state) { delete(st.consumptions, c.ID) })
		return nil
	})
}

// UpdateLedger implements inventory.Store.
func (s *Store) UpdateLedger(ctx context.Context, itemCode string, ledger inventory.Ledger) error {
	return s.write(ctx, func(st *state, t *txState) error {
		it, ok := st.items[itemCode]
		if !ok {
			return apperror.NewNotFound("item", itemCode)
		}
		stock, balance := it.Stock, it.Balance
		it.Stock, it.Balance = ledger.Stock, ledger.Balance
		t.onRollback(func(st *state) {
			if it, ok := st.items[itemCode]; ok {
				it.Stock, it.Balance = stock, balance
			}
		})
		return nil
	})
}

// Record implements inventory.AuditSink.
func (s *Store) Record(ctx context.Context, entry inventory.AuditEntry) error {
	return s.write(ctx, func(st *state, t *txState) error {
		s.auditSeq++
		seq := s.auditSeq
		st.audit = append(st.audit, auditRecord{seq: seq, entry: entry})
		t.onRollback(func(st *state) {
			for i, rec := range st.audit {
				if rec.seq == seq {
					st.audit = append(st.audit[:i], st.audit[i+1:]...)
					return
				}
			}
		})
		return nil
	})
}

// AuditEntries returns the committed audit trail, oldest first.
func (s *Store) AuditEntries(ctx context.Context) []inventory.AuditEntry {
	var out []inventory.AuditEntry
	_ = s.read(ctx, func(st *state) error {
		for _, rec := range st.audit {
			out = append(out, rec.entry)
		}
		return nil
	})
	return out
}

// LatestMovement implements inventory.Store.
func (s *Store) LatestMovement(ctx context.Context, itemCode, kind string) (inventory.MovementKey, bool, error) {
	var (
		latest inventory.MovementKey
		found  bool
	)
	consider := func(k inventory.MovementKey) {
		if kind != "" && k.Kind != kind {
			return
		}
		if !found || inventory.CompareMovements(k, latest) > 0 {
			latest, found = k, true
		}
	}
	err := s.read(ctx, func(st *state) error {
		for _, l := range st.lots {
			if l.ItemCode == itemCode {
				consider(inventory.MovementKey{Date: l.DocumentDate, DocumentCode: l.DocumentCode, Kind: inventory.MovementPurchase})
			}
		}
		for _, c := range st.consumptions {
			if c.ItemCode == itemCode {
				consider(inventory.MovementKey{Date: c.DocumentDate, DocumentCode: c.DocumentCode, Kind: inventory.MovementSale})
			}
		}
		return nil
	})
	return latest, found, err
}

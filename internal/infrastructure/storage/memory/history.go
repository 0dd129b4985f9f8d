package memory

import (
	"context"
	"time"

	"fifostock/internal/core/numerator"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/domain/reports"
)

var (
	_ reports.HistorySource = (*Store)(nil)
	_ numerator.Generator   = (*Store)(nil)
)

// Events implements reports.HistorySource.
func (s *Store) Events(ctx context.Context, itemCode string, to *time.Time) ([]reports.Event, error) {
	var out []reports.Event
	err := s.read(ctx, func(st *state) error {
		for _, l := range st.lots {
			if l.ItemCode != itemCode || (to != nil && l.DocumentDate.After(*to)) {
				continue
			}
			ev := reports.Event{
				Kind:      inventory.MovementPurchase,
				Date:      l.DocumentDate,
				Code:      l.DocumentCode,
				DetailID:  l.ID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			}
			if h, ok := st.purchases[l.DocumentCode]; ok {
				ev.Description = h.Description
			}
			out = append(out, ev)
		}
		for _, c := range st.consumptions {
			if c.ItemCode != itemCode || (to != nil && c.DocumentDate.After(*to)) {
				continue
			}
			ev := reports.Event{
				Kind:     inventory.MovementSale,
				Date:     c.DocumentDate,
				Code:     c.DocumentCode,
				DetailID: c.ID,
				Quantity: c.Quantity,
			}
			if h, ok := st.sales[c.DocumentCode]; ok {
				ev.Description = h.Description
			}
			out = append(out, ev)
		}
		return nil
	})
	return out, err
}

// Next implements numerator.Generator. Numbers are not returned on rollback.
func (s *Store) Next(_ context.Context, cfg numerator.Config, period time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cfg.Key(period)
	s.sequences[key]++
	return cfg.Format(period, s.sequences[key]), nil
}

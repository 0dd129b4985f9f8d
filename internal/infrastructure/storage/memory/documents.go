package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/id"
	"fifostock/internal/domain"
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
)

func clonePurchase(p *purchase.Purchase) *purchase.Purchase {
	c := *p
	c.Lots = nil
	return &c
}

func cloneSale(s *sale.Sale) *sale.Sale {
	c := *s
	c.Consumptions = nil
	return &c
}

// Purchases returns the purchase header repository.
func (s *Store) Purchases() purchase.Repository {
	return &headerRepo[*purchase.Purchase, *inventory.Lot]{
		s:     s,
		kind:  "purchase",
		table: func(st *state) map[string]*purchase.Purchase { return st.purchases },
		clone: clonePurchase,
		details: func(st *state, code string) []*inventory.Lot {
			var out []*inventory.Lot
			for _, l := range st.lots {
				if l.DocumentCode == code {
					c := *l
					out = append(out, &c)
				}
			}
			inventory.SortLots(out)
			return out
		},
	}
}

// Sales returns the sale header repository.
func (s *Store) Sales() sale.Repository {
	return &headerRepo[*sale.Sale, *inventory.Consumption]{
		s:     s,
		kind:  "sale",
		table: func(st *state) map[string]*sale.Sale { return st.sales },
		clone: cloneSale,
		details: func(st *state, code string) []*inventory.Consumption {
			var out []*inventory.Consumption
			for _, c := range st.consumptions {
				if c.DocumentCode == code {
					cc := *c
					out = append(out, &cc)
				}
			}
			slices.SortFunc(out, func(a, b *inventory.Consumption) int { return id.Compare(a.ID, b.ID) })
			return out
		},
	}
}

// headerRepo implements documents.HeaderRepository over one header table.
type headerRepo[T documents.Header, D any] struct {
	s       *Store
	kind    string
	table   func(*state) map[string]T
	clone   func(T) T
	details func(*state, string) []D
}

func (r *headerRepo[T, D]) Create(ctx context.Context, doc T) error {
	code := doc.Doc().Code
	return r.s.write(ctx, func(st *state, t *txState) error {
		tbl := r.table(st)
		if _, ok := tbl[code]; ok {
			return apperror.NewDuplicate(r.kind, "code", code)
		}
		tbl[code] = r.clone(doc)
		t.onRollback(func(st *state) { delete(r.table(st), code) })
		return nil
	})
}

func (r *headerRepo[T, D]) GetByCode(ctx context.Context, code string) (T, error) {
	var out T
	err := r.s.read(ctx, func(st *state) error {
		doc, ok := r.table(st)[code]
		if !ok || doc.Doc().IsDeleted() {
			return apperror.NewNotFound(r.kind, code)
		}
		out = r.clone(doc)
		return nil
	})
	return out, err
}

func (r *headerRepo[T, D]) GetForUpdate(ctx context.Context, code string) (T, error) {
	return r.lock(ctx, code, lockExclusive)
}

func (r *headerRepo[T, D]) GetForShare(ctx context.Context, code string) (T, error) {
	return r.lock(ctx, code, lockShared)
}

func (r *headerRepo[T, D]) lock(ctx context.Context, code string, weight int64) (T, error) {
	if err := r.s.acquire(ctx, r.kind+":"+code, weight, r.s.lockTimeout); err != nil {
		var zero T
		return zero, contention(err, code)
	}
	return r.GetByCode(ctx, code)
}

func (r *headerRepo[T, D]) Update(ctx context.Context, doc T) error {
	d := doc.Doc()
	return r.s.write(ctx, func(st *state, t *txState) error {
		cur, ok := r.table(st)[d.Code]
		if !ok || cur.Doc().IsDeleted() {
			return apperror.NewNotFound(r.kind, d.Code)
		}
		c := cur.Doc()
		if c.Version != d.Version {
			return apperror.NewConcurrentModification(r.kind, d.Code).
				WithDetail("expected_version", d.Version).
				WithDetail("actual_version", c.Version)
		}

		prev := *c
		c.Date = d.Date
		c.Description = d.Description
		c.Touch()
		t.onRollback(func(st *state) {
			if cur, ok := r.table(st)[prev.Code]; ok {
				*cur.Doc() = prev
			}
		})
		return nil
	})
}

func (r *headerRepo[T, D]) Delete(ctx context.Context, code string) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		cur, ok := r.table(st)[code]
		if !ok || cur.Doc().IsDeleted() {
			return apperror.NewNotFound(r.kind, code)
		}
		prev := *cur.Doc()
		cur.Doc().MarkDeleted()
		t.onRollback(func(st *state) {
			if cur, ok := r.table(st)[code]; ok {
				*cur.Doc() = prev
			}
		})
		return nil
	})
}

func (r *headerRepo[T, D]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	var matched []T
	err := r.s.read(ctx, func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, doc := range r.table(st) {
			d := doc.Doc()
			if d.IsDeleted() && !filter.IncludeDeleted {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(d.Code), search) &&
				!strings.Contains(strings.ToLower(d.Description), search) {
				continue
			}
			matched = append(matched, r.clone(doc))
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[T]{}, err
	}

	slices.SortFunc(matched, func(a, b T) int {
		if c := b.Doc().Date.Compare(a.Doc().Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Doc().Code, a.Doc().Code)
	})
	return page(matched, filter), nil
}

func (r *headerRepo[T, D]) Details(ctx context.Context, code string) ([]D, error) {
	var out []D
	err := r.s.read(ctx, func(st *state) error {
		out = r.details(st, code)
		return nil
	})
	return out, err
}

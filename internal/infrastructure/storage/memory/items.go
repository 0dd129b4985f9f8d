package memory

import (
	"context"
	"slices"
	"strings"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/inventory"
)

func cloneItem(it *item.Item) *item.Item {
	c := *it
	return &c
}

// Items returns the item repository.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{s}
}

// ItemRepo implements item.Repository and inventory.ItemSource.
type ItemRepo struct{ s *Store }

var (
	_ item.Repository      = (*ItemRepo)(nil)
	_ inventory.ItemSource = (*ItemRepo)(nil)
)

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.items[it.Code]; ok {
			return apperror.NewDuplicate("item", "code", it.Code)
		}
		st.items[it.Code] = cloneItem(it)
		t.onRollback(func(st *state) { delete(st.items, it.Code) })
		return nil
	})
}

func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	var out *item.Item
	err := r.s.read(ctx, func(st *state) error {
		it, ok := st.items[code]
		if !ok || it.IsDeleted() {
			return apperror.NewNotFound("item", code)
		}
		out = cloneItem(it)
		return nil
	})
	return out, err
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		cur, ok := st.items[it.Code]
		if !ok || cur.IsDeleted() {
			return apperror.NewNotFound("item", it.Code)
		}
		if cur.Version != it.Version {
			return apperror.NewConcurrentModification("item", it.Code).
				WithDetail("expected_version", it.Version).
				WithDetail("actual_version", cur.Version)
		}

		prev := *cur
		cur.Name = it.Name
		cur.Unit = it.Unit
		cur.Description = it.Description
		cur.Touch()
		t.onRollback(func(st *state) {
			if c, ok := st.items[prev.Code]; ok {
				c.Name, c.Unit, c.Description = prev.Name, prev.Unit, prev.Description
				c.Version, c.UpdatedAt = prev.Version, prev.UpdatedAt
			}
		})
		return nil
	})
}

func (r *ItemRepo) Delete(ctx context.Context, code string) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		cur, ok := st.items[code]
		if !ok || cur.IsDeleted() {
			return apperror.NewNotFound("item", code)
		}
		version, updated := cur.Version, cur.UpdatedAt
		cur.MarkDeleted()
		t.onRollback(func(st *state) {
			if c, ok := st.items[code]; ok {
				c.DeletionMark = false
				c.Version, c.UpdatedAt = version, updated
			}
		})
		return nil
	})
}

func (r *ItemRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	filter = filter.Normalize()
	var matched []*item.Item
	err := r.s.read(ctx, func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, it := range st.items {
			if it.IsDeleted() && !filter.IncludeDeleted {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(it.Code), search) &&
				!strings.Contains(strings.ToLower(it.Name), search) {
				continue
			}
			matched = append(matched, cloneItem(it))
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*item.Item]{}, err
	}

	slices.SortFunc(matched, func(a, b *item.Item) int { return strings.Compare(a.Code, b.Code) })
	return page(matched, filter), nil
}

// ItemCodes returns the codes of active items in order.
func (r *ItemRepo) ItemCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.s.read(ctx, func(st *state) error {
		for code, it := range st.items {
			if !it.IsDeleted() {
				codes = append(codes, code)
			}
		}
		return nil
	})
	slices.Sort(codes)
	return codes, err
}

func page[T any](all []T, filter domain.ListFilter) domain.ListResult[T] {
	res := domain.ListResult[T]{
		Items:      []T{},
		TotalCount: int64(len(all)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset >= len(all) {
		return res
	}
	end := min(filter.Offset+filter.Limit, len(all))
	res.Items = all[filter.Offset:end]
	return res
}

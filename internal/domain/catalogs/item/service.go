package item

import (
	"context"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/tx"
	"fifostock/internal/domain"
	"fifostock/pkg/logger"
)

// Service provides the item catalog operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new item service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create registers a new item with zero stock and balance.
func (s *Service) Create(ctx context.Context, item *Item) error {
	item.Stock = decimal.Zero
	item.Balance = decimal.Zero

	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}

	logger.Info(ctx, "item created", "item_code", item.Code)
	return nil
}

// Get returns an active item.
func (s *Service) Get(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns active items ordered by code.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Update changes the descriptive attributes of an item.
func (s *Service) Update(ctx context.Context, code string, patch Patch) (*Item, error) {
	var updated *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if patch.Version != 0 && patch.Version != current.Version {
			return apperror.NewConcurrentModification("item", code).
				WithDetail("expected_version", patch.Version).
				WithDetail("actual_version", current.Version)
		}

		patch.Apply(current)
		if err := current.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		current.Touch()
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "item updated", "item_code", code, "version", updated.Version)
	return updated, nil
}

// Delete soft-deletes an item. Its committed history stays in the ledger,
// but no new purchase or sale can reference it.
func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	logger.Info(ctx, "item deleted", "item_code", code)
	return nil
}

package purchase

import (
	"context"

	"fifostock/internal/core/numerator"
	"fifostock/internal/core/tx"
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/inventory"
)

// Recorder is the part of inventory.Recorder purchases need.
type Recorder interface {
	RecordPurchase(ctx context.Context, e inventory.PurchaseEntry) (*inventory.Lot, error)
}

// Service provides purchase document operations.
type Service struct {
	*documents.HeaderService[*Purchase, *inventory.Lot]
	recorder Recorder
}

// NewService creates a purchase service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, recorder Recorder) *Service {
	return &Service{
		HeaderService: documents.NewHeaderService(
			"purchase", repo, txManager, gen, Numbering,
			func(p *Purchase, lots []*inventory.Lot) { p.Lots = lots },
		),
		recorder: recorder,
	}
}

// AddDetail records a purchase line as a new lot dated by the header.
// The header is share-locked until the lot is committed, so its date cannot
// change underneath while lines of other items proceed.
func (s *Service) AddDetail(ctx context.Context, code string, line Line) (*inventory.Lot, error) {
	var lot *inventory.Lot
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		header, err := s.Repo().GetForShare(ctx, code)
		if err != nil {
			return err
		}
		lot, err = s.recorder.RecordPurchase(ctx, inventory.PurchaseEntry{
			DocumentCode: header.Code,
			DocumentDate: header.Date,
			ItemCode:     line.ItemCode,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

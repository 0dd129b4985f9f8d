package sale

import (
	"context"

	"fifostock/internal/core/numerator"
	"fifostock/internal/core/tx"
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/inventory"
)

// Recorder is the part of inventory.Recorder sales need.
type Recorder interface {
	RecordSale(ctx context.Context, e inventory.SaleEntry) (*inventory.SaleResult, error)
}

// Service provides sale document operations.
type Service struct {
	*documents.HeaderService[*Sale, *inventory.Consumption]
	recorder Recorder
}

// NewService creates a sale service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, recorder Recorder) *Service {
	return &Service{
		HeaderService: documents.NewHeaderService(
			"sale", repo, txManager, gen, Numbering,
			func(s *Sale, lines []*inventory.Consumption) { s.Consumptions = lines },
		),
		recorder: recorder,
	}
}

// AddDetail records a sale line dated by the header. The sale is rejected
// whole when the item does not hold enough stock.
func (s *Service) AddDetail(ctx context.Context, code string, line Line) (*inventory.SaleResult, error) {
	var res *inventory.SaleResult
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		header, err := s.Repo().GetForShare(ctx, code)
		if err != nil {
			return err
		}
		res, err = s.recorder.RecordSale(ctx, inventory.SaleEntry{
			DocumentCode: header.Code,
			DocumentDate: header.Date,
			ItemCode:     line.ItemCode,
			Quantity:     line.Quantity,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

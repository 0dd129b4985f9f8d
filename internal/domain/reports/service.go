package reports

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/tx"
	"fifostock/pkg/logger"
)

var tracer = otel.Tracer("fifostock/reports")

// Service builds item ledgers.
type Service struct {
	items     ItemReader
	history   HistorySource
	txManager tx.SnapshotManager
}

// NewService creates a new report service.
func NewService(items ItemReader, history HistorySource, txManager tx.SnapshotManager) *Service {
	return &Service{items: items, history: history, txManager: txManager}
}

// ItemLedger reconstructs the ledger of an item over rng from a single
// point-in-time view of its history.
func (s *Service) ItemLedger(ctx context.Context, itemCode string, rng DateRange) (*ItemLedger, error) {
	ctx, span := tracer.Start(ctx, "reports.item_ledger")
	defer span.End()
	span.SetAttributes(attribute.String("item.code", itemCode))

	if err := rng.Validate(); err != nil {
		return nil, err
	}

	var result *ItemLedger
	err := s.txManager.Snapshot(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByCode(ctx, itemCode)
		if err != nil {
			return err
		}

		events, err := s.history.Events(ctx, itemCode, rng.To)
		if err != nil {
			return err
		}

		rows, summary, err := Replay(itemCode, events, rng)
		if err != nil {
			return err
		}

		result = &ItemLedger{
			ItemCode: it.Code,
			Name:     it.Name,
			Unit:     it.Unit,
			Range:    rng,
			Rows:     rows,
			Summary:  summary,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apperror.IsConsistencyFault(err) {
			logger.Error(ctx, "ledger replay failed", "item_code", itemCode, "severity", "consistency", "error", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("report.rows", len(result.Rows)))
	return result, nil
}

package document_repo

import (
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/postgres"
)

var _ purchase.Repository = (*BaseDocumentRepo[*purchase.Purchase, *inventory.Lot])(nil)

// NewPurchaseRepo creates the repository of purchase headers and their lots.
func NewPurchaseRepo(txManager *postgres.TxManager) *BaseDocumentRepo[*purchase.Purchase, *inventory.Lot] {
	return NewBaseDocumentRepo[*purchase.Purchase, *inventory.Lot](
		txManager, "purchase", "doc_purchases",
		postgres.ExtractDBColumns[purchase.Purchase](),
		DetailTable{
			Name:      "doc_purchase_lots",
			DocColumn: "purchase_code",
			Columns:   postgres.ExtractDBColumns[inventory.Lot](),
			OrderBy:   []string{"id"},
		},
		func() *purchase.Purchase { return &purchase.Purchase{} },
	)
}

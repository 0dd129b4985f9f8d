package document_repo

import (
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/storage/postgres"
)

var _ sale.Repository = (*BaseDocumentRepo[*sale.Sale, *inventory.Consumption])(nil)

// NewSaleRepo creates the repository of sale headers and their lines.
func NewSaleRepo(txManager *postgres.TxManager) *BaseDocumentRepo[*sale.Sale, *inventory.Consumption] {
	return NewBaseDocumentRepo[*sale.Sale, *inventory.Consumption](
		txManager, "sale", "doc_sales",
		postgres.ExtractDBColumns[sale.Sale](),
		DetailTable{
			Name:      "doc_sale_lines",
			DocColumn: "sale_code",
			Columns:   postgres.ExtractDBColumns[inventory.Consumption](),
			OrderBy:   []string{"id"},
		},
		func() *sale.Sale { return &sale.Sale{} },
	)
}

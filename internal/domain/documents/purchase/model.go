// Package purchase implements purchase documents: each detail line is a new lot.
package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/entity"
	"fifostock/internal/domain/inventory"
)

// Purchase is a purchase document header with its lots.
type Purchase struct {
	entity.Document

	Lots []*inventory.Lot `db:"-" json:"details"`
}

// NewPurchase creates a purchase header. An empty code is generated on create.
func NewPurchase(code string, date time.Time, description string) *Purchase {
	return &Purchase{Document: entity.NewDocument(code, date, description)}
}

// Doc implements documents.Header.
func (p *Purchase) Doc() *entity.Document {
	return &p.Document
}

// Line is a purchase detail to add.
type Line struct {
	ItemCode  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

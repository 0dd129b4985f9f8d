// Package sale implements sale documents: each detail line consumes lots FIFO.
package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/entity"
	"fifostock/internal/domain/inventory"
)

// Sale is a sale document header with its consumptions.
type Sale struct {
	entity.Document

	Consumptions []*inventory.Consumption `db:"-" json:"details"`
}

// NewSale creates a sale header. An empty code is generated on create.
func NewSale(code string, date time.Time, description string) *Sale {
	return &Sale{Document: entity.NewDocument(code, date, description)}
}

// Doc implements documents.Header.
func (s *Sale) Doc() *entity.Document {
	return &s.Document
}

// Line is a sale detail to add.
type Line struct {
	ItemCode string
	Quantity decimal.Decimal
}

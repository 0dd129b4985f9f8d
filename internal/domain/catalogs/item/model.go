// Package item implements the item catalog: the goods whose stock is costed FIFO.
package item

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/entity"
)

// Item is an inventory item together with its cached ledger.
//
// Stock and Balance always equal the remaining quantity and the remaining
// cost summed over the item's live lots. Only inventory.Recorder writes them.
type Item struct {
	entity.Catalog

	Unit        string          `db:"unit" json:"unit"`
	Description string          `db:"description" json:"description"`
	Stock       decimal.Decimal `db:"stock" json:"stock"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
}

// NewItem creates an item with an empty ledger.
func NewItem(code, name, unit, description string) *Item {
	return &Item{
		Catalog:     entity.NewCatalog(code, name),
		Unit:        strings.TrimSpace(unit),
		Description: description,
		Stock:       decimal.Zero,
		Balance:     decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}
	if i.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	if i.Stock.IsNegative() || i.Balance.IsNegative() {
		return apperror.NewValidation("stock and balance cannot be negative").
			WithDetail("stock", i.Stock.String()).
			WithDetail("balance", i.Balance.String())
	}
	return nil
}

// Patch holds the editable attributes of an item. Nil fields are left as is.
type Patch struct {
	Name        *string
	Unit        *string
	Description *string
	// Version, when non-zero, must match the stored version
	Version int
}

// Apply copies the set fields of p onto i.
func (p Patch) Apply(i *Item) {
	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Unit != nil {
		i.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
}

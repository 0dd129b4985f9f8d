package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/domain/catalogs/item"
)

// CreateItemRequest creates an item. Stock and balance start at zero.
type CreateItemRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Unit        string `json:"unit" binding:"required"`
	Description string `json:"description"`
}

// UpdateItemRequest edits the descriptive fields of an item.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Unit        *string `json:"unit"`
	Description *string `json:"description"`
	Version     int     `json:"version"`
}

// ToPatch converts the request to a domain patch.
func (r UpdateItemRequest) ToPatch() item.Patch {
	return item.Patch{
		Name:        r.Name,
		Unit:        r.Unit,
		Description: r.Description,
		Version:     r.Version,
	}
}

// ItemResponse is an item with its cached ledger.
type ItemResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Description string          `json:"description"`
	Stock       decimal.Decimal `json:"stock"`
	Balance     decimal.Decimal `json:"balance"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromItem maps an item.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		Code:        it.Code,
		Name:        it.Name,
		Unit:        it.Unit,
		Description: it.Description,
		Stock:       it.Stock,
		Balance:     it.Balance,
		Version:     it.Version,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

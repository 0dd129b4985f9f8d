package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/entity"
	"fifostock/internal/core/types"
	"fifostock/internal/domain/documents"
	"fifostock/internal/domain/inventory"
)

// CreateDocumentRequest creates a purchase or sale header.
// An empty code is generated.
type CreateDocumentRequest struct {
	Code        string `json:"code"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
}

// ParseDate parses the YYYY-MM-DD date of the request.
func (r CreateDocumentRequest) ParseDate() (time.Time, error) {
	return parseDate(r.Date)
}

// UpdateDocumentRequest edits a header.
type UpdateDocumentRequest struct {
	Date        *string `json:"date"`
	Description *string `json:"description"`
	Version     int     `json:"version"`
}

// ToPatch converts the request to a domain patch.
func (r UpdateDocumentRequest) ToPatch() (documents.Patch, error) {
	patch := documents.Patch{Description: r.Description, Version: r.Version}
	if r.Date != nil {
		d, err := parseDate(*r.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	return patch, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := types.ParseDate(s)
	if err != nil {
		return d, dateError("date", s)
	}
	return d, nil
}

func dateError(field, value string) error {
	return apperror.NewValidation(field + " must be YYYY-MM-DD").
		WithDetail("field", field).
		WithDetail("value", value)
}

// DocumentResponse is a header with its detail lines.
type DocumentResponse[D any] struct {
	Code        string `json:"code"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Version     int    `json:"version"`
	Details     []D    `json:"details"`
}

// FromDocument maps a header; details may be nil for listings.
func FromDocument[D any](d *entity.Document, details []D) DocumentResponse[D] {
	if details == nil {
		details = []D{}
	}
	return DocumentResponse[D]{
		Code:        d.Code,
		Date:        d.Date.Format(types.DateLayout),
		Description: d.Description,
		Version:     d.Version,
		Details:     details,
	}
}

// PurchaseDetailRequest adds a lot to a purchase.
type PurchaseDetailRequest struct {
	Item      string          `json:"item" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PurchaseDetailResponse is a lot.
type PurchaseDetailResponse struct {
	ID                string          `json:"id"`
	Item              string          `json:"item"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
}

// FromLot maps a lot.
func FromLot(l *inventory.Lot) PurchaseDetailResponse {
	return PurchaseDetailResponse{
		ID:                l.ID.String(),
		Item:              l.ItemCode,
		Quantity:          l.Quantity,
		UnitPrice:         l.UnitPrice,
		RemainingQuantity: l.Remaining,
	}
}

// FromLots maps lots.
func FromLots(lots []*inventory.Lot) []PurchaseDetailResponse {
	out := make([]PurchaseDetailResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, FromLot(l))
	}
	return out
}

// SaleDetailRequest adds a line to a sale.
type SaleDetailRequest struct {
	Item     string          `json:"item" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SaleDetailResponse is a sale line. Cost fields are set only when the
// line was just recorded.
type SaleDetailResponse struct {
	ID       string           `json:"id"`
	Item     string           `json:"item"`
	Quantity decimal.Decimal  `json:"quantity"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Takes    []inventory.Take `json:"takes,omitempty"`
}

// FromConsumption maps a sale line.
func FromConsumption(c *inventory.Consumption) SaleDetailResponse {
	return SaleDetailResponse{
		ID:       c.ID.String(),
		Item:     c.ItemCode,
		Quantity: c.Quantity,
	}
}

// FromConsumptions maps sale lines.
func FromConsumptions(cs []*inventory.Consumption) []SaleDetailResponse {
	out := make([]SaleDetailResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromConsumption(c))
	}
	return out
}

// FromSaleResult maps a recorded sale with its cost.
func FromSaleResult(r *inventory.SaleResult) SaleDetailResponse {
	resp := FromConsumption(r.Consumption)
	cost := r.Allocation.Cost
	unitCost := r.Allocation.UnitCost()
	resp.Cost = &cost
	resp.UnitCost = &unitCost
	resp.Takes = r.Allocation.Takes
	return resp
}

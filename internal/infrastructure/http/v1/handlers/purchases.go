package handlers

import (
	"github.com/gin-gonic/gin"

	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for purchase documents.
type PurchaseHandler struct {
	*DocumentHandler[*purchase.Purchase, *inventory.Lot, dto.PurchaseDetailResponse]
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		DocumentHandler: NewDocumentHandler(base, DocumentHandlerConfig[*purchase.Purchase, *inventory.Lot, dto.PurchaseDetailResponse]{
			Service:   service.HeaderService,
			New:       purchase.NewPurchase,
			Details:   func(p *purchase.Purchase) []*inventory.Lot { return p.Lots },
			MapDetail: dto.FromLot,
		}),
		service: service,
	}
}

// AddDetail handles POST /purchases/:code/details
func (h *PurchaseHandler) AddDetail(c *gin.Context) {
	var req dto.PurchaseDetailRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.AddDetail(c.Request.Context(), c.Param("code"), purchase.Line{
		ItemCode:  req.Item,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromLot(lot))
}

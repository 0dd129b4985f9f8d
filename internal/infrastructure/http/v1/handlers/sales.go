package handlers

import (
	"github.com/gin-gonic/gin"

	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/inventory"
	"fifostock/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles HTTP requests for sale documents.
type SaleHandler struct {
	*DocumentHandler[*sale.Sale, *inventory.Consumption, dto.SaleDetailResponse]
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{
		DocumentHandler: NewDocumentHandler(base, DocumentHandlerConfig[*sale.Sale, *inventory.Consumption, dto.SaleDetailResponse]{
			Service:   service.HeaderService,
			New:       sale.NewSale,
			Details:   func(s *sale.Sale) []*inventory.Consumption { return s.Consumptions },
			MapDetail: dto.FromConsumption,
		}),
		service: service,
	}
}

// AddDetail handles POST /sales/:code/details.
// The response carries the FIFO cost of the line.
func (h *SaleHandler) AddDetail(c *gin.Context) {
	var req dto.SaleDetailRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.AddDetail(c.Request.Context(), c.Param("code"), sale.Line{
		ItemCode: req.Item,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSaleResult(res))
}

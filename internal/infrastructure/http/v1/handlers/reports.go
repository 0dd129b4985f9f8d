package handlers

import (
	"github.com/gin-gonic/gin"

	"fifostock/internal/domain/reports"
	"fifostock/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ItemLedger handles GET /reports/:code?start_date=&end_date=
//
// Both bounds are optional YYYY-MM-DD dates. Rows cover movements inside the
// range only. Movements before start_date are replayed to build the lots the
// range opens with; summary.opening_qty and summary.opening_balance report
// them, so opening_qty + in_qty - out_qty equals balance_qty.
func (h *ReportsHandler) ItemLedger(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	rng, err := req.ToRange()
	if err != nil {
		h.Error(c, err)
		return
	}

	ledger, err := h.service.ItemLedger(c.Request.Context(), c.Param("code"), rng)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItemLedger(ledger))
}

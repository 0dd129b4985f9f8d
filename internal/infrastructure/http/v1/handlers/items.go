package handlers

import (
	"github.com/gin-gonic/gin"

	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles HTTP requests for the item catalog.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service}
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, dto.FromItem))
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := item.NewItem(req.Code, req.Name, req.Unit, req.Description)
	if err := h.service.Create(c.Request.Context(), it); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromItem(it))
}

// Get handles GET /items/:code
func (h *ItemHandler) Get(c *gin.Context) {
	it, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItem(it))
}

// Update handles PATCH /items/:code
func (h *ItemHandler) Update(c *gin.Context) {
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it, err := h.service.Update(c.Request.Context(), c.Param("code"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItem(it))
}

// Delete handles DELETE /items/:code
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

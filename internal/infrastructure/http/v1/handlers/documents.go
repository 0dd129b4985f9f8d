package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fifostock/internal/domain/documents"
	"fifostock/internal/infrastructure/http/v1/dto"
)

// DocumentHandler provides the header endpoints shared by purchases and sales.
// D is the stored detail type, R its response shape.
type DocumentHandler[T documents.Header, D any, R any] struct {
	*BaseHandler
	service   *documents.HeaderService[T, D]
	newFn     func(code string, date time.Time, description string) T
	details   func(T) []D
	mapDetail func(D) R
}

// DocumentHandlerConfig configures a DocumentHandler.
type DocumentHandlerConfig[T documents.Header, D any, R any] struct {
	Service   *documents.HeaderService[T, D]
	New       func(code string, date time.Time, description string) T
	Details   func(T) []D
	MapDetail func(D) R
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler[T documents.Header, D any, R any](base *BaseHandler, cfg DocumentHandlerConfig[T, D, R]) *DocumentHandler[T, D, R] {
	return &DocumentHandler[T, D, R]{
		BaseHandler: base,
		service:     cfg.Service,
		newFn:       cfg.New,
		details:     cfg.Details,
		mapDetail:   cfg.MapDetail,
	}
}

func (h *DocumentHandler[T, D, R]) mapDetails(ds []D) []R {
	out := make([]R, 0, len(ds))
	for _, d := range ds {
		out = append(out, h.mapDetail(d))
	}
	return out
}

func (h *DocumentHandler[T, D, R]) toDTO(doc T) dto.DocumentResponse[R] {
	return dto.FromDocument(doc.Doc(), h.mapDetails(h.details(doc)))
}

// List handles GET /{documents}
func (h *DocumentHandler[T, D, R]) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(res, func(doc T) dto.DocumentResponse[R] {
		return dto.FromDocument[R](doc.Doc(), nil)
	}))
}

// Create handles POST /{documents}
func (h *DocumentHandler[T, D, R]) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	date, err := req.ParseDate()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc := h.newFn(req.Code, date, req.Description)
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.toDTO(doc))
}

// Get handles GET /{documents}/:code
func (h *DocumentHandler[T, D, R]) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.toDTO(doc))
}

// Update handles PATCH /{documents}/:code
func (h *DocumentHandler[T, D, R]) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("code"), patch)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDocument[R](doc.Doc(), nil))
}

// Delete handles DELETE /{documents}/:code
func (h *DocumentHandler[T, D, R]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Details handles GET /{documents}/:code/details
func (h *DocumentHandler[T, D, R]) Details(c *gin.Context) {
	ds, err := h.service.Details(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapDetails(ds))
}

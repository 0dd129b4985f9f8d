package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the interface for document handlers.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Details(c *gin.Context)
	AddDetail(c *gin.Context)
}

// RegisterDocumentRoutes registers header CRUD and detail routes for a document.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:code", handler.Get)
	group.PATCH("/:code", handler.Update)
	group.DELETE("/:code", handler.Delete)
	group.GET("/:code/details", handler.Details)
	group.POST("/:code/details", handler.AddDetail)
}

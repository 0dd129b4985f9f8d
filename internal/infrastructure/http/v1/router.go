// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fifostock/internal/core/idempotency"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/internal/domain/reports"
	"fifostock/internal/infrastructure/http/v1/handlers"
	"fifostock/internal/infrastructure/http/v1/middleware"
	"fifostock/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	Items     *item.Service
	Purchases *purchase.Service
	Sales     *sale.Service
	Reports   *reports.Service

	// Idempotency, when set, makes POST/PUT/PATCH honour X-Idempotency-Key
	Idempotency idempotency.Store

	// Health probes backing services by name
	Health  map[string]handlers.Pinger
	Version string

	// Compress enables gzip responses
	Compress bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Compress {
		router.Use(middleware.Gzip())
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.Health)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()

	itemHandler := handlers.NewItemHandler(base, cfg.Items)
	items := api.Group("/items")
	{
		items.GET("", itemHandler.List)
		items.POST("", itemHandler.Create)
		items.GET("/:code", itemHandler.Get)
		items.PATCH("/:code", itemHandler.Update)
		items.DELETE("/:code", itemHandler.Delete)
	}

	RegisterDocumentRoutes(api.Group("/purchases"), handlers.NewPurchaseHandler(base, cfg.Purchases))
	RegisterDocumentRoutes(api.Group("/sales"), handlers.NewSaleHandler(base, cfg.Sales))

	reportsHandler := handlers.NewReportsHandler(base, cfg.Reports)
	api.GET("/reports/:code", reportsHandler.ItemLedger)

	return router
}

// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlft9/perimapp/internal/config"
	"github.com/mlft9/perimapp/internal/handlers"
	"github.com/mlft9/perimapp/internal/lookup"
	"github.com/mlft9/perimapp/internal/middleware"
	"github.com/mlft9/perimapp/internal/scanner"
	"github.com/mlft9/perimapp/internal/services"
	"github.com/mlft9/perimapp/internal/store"
)

func Initialize(st store.Store, hub *scanner.Hub, cfg *config.Config) *gin.Engine {
	// Initialize services
	productService := services.NewProductService(st)
	lookupCache := lookup.NewCache(cfg.Redis, time.Duration(cfg.Lookup.CacheTTL)*time.Minute)
	lookupClient := lookup.NewClient(cfg.Lookup, lookupCache)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	lookupHandler := handlers.NewLookupHandler(lookupClient)
	scanHandler := handlers.NewScanHandler(hub)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/summary", productHandler.GetSummary)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
			products.PATCH("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		lookups := v1.Group("/lookup")
		lookups.Use(middleware.LookupRateLimit())
		{
			lookups.GET("/:barcode", lookupHandler.GetByBarcode)
		}

		scans := v1.Group("/scan-sessions")
		{
			scans.POST("", scanHandler.CreateSession)
			scans.POST("/:id/barcodes", scanHandler.PublishBarcode)
			scans.GET("/:id/ws", scanHandler.StreamEvents)
			scans.DELETE("/:id", scanHandler.DeleteSession)
		}
	}

	return r
}

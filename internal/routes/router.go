package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"terminal-inventory/internal/config"
	"terminal-inventory/internal/delivery/http/handler"
	"terminal-inventory/internal/infrastructure/database/postgres"
	"terminal-inventory/internal/logger"
	"terminal-inventory/internal/middleware"
	"terminal-inventory/internal/usecase/inventory"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	deviceRepository := postgres.NewDeviceRepository(db)
	customerRepository := postgres.NewCustomerRepository(db)
	inventoryService := inventory.NewService(deviceRepository, customerRepository)
	deviceHandler := handler.NewDeviceHandler(inventoryService)

	v1 := router.Group("/api/v1")
	{
		deviceHandler.RegisterRoutes(v1)
	}

	logger.Info("All routes initialized")
	return router
}

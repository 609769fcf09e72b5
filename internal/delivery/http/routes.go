package http

import (
	"github.com/forkandfind/client/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger.Named("access")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Homepage state of the calling browser session
		home := v1.Group("/home")
		{
			home.GET("", handler.GetHome)
			home.POST("/category", handler.SelectCategory)
			home.POST("/search", handler.Search)
			home.POST("/all", handler.ShowAll)
			home.POST("/sort", handler.ToggleSort)
			home.POST("/sentinel", handler.SentinelVisible)
		}

		v1.GET("/categories", handler.GetCategories)
		v1.GET("/products/:code", handler.GetProduct)
	}

	return router
}

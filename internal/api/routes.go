package api

import (
	"github.com/RishiKendai/verbatim/internal/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	cfg *config.Config,
	documents DocumentCounter,
	reports ReportReader,
	status StatusStore,
	comparer CollectionComparer,
) *gin.Engine {
	router := gin.New()

	handler := NewHandler(cfg, documents, reports, status, comparer)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/analyze", handler.Analyze)
		api.POST("/search", handler.Search)
		api.POST("/compare", handler.Compare)
		api.GET("/compare/:collectionId/status", handler.Status)
		api.GET("/compare/:collectionId/report", handler.Report)
	}

	return router
}

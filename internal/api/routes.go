package api

import (
	"github.com/JustJay7/barangay-case-dashboard/internal/cache"
	"github.com/JustJay7/barangay-case-dashboard/internal/config"
	"github.com/JustJay7/barangay-case-dashboard/internal/metrics"
	"github.com/JustJay7/barangay-case-dashboard/internal/service"
	"github.com/JustJay7/barangay-case-dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, svc *service.Service, cache cache.Cache, m *metrics.Metrics, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(svc, cache, logger, cfg)

	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/storage", h.StorageInfo)

		// Case endpoints
		api.GET("/cases", h.ListCases)
		api.POST("/cases", h.CreateCase)
		api.GET("/cases/export", h.ExportCases)
		api.POST("/cases/import", h.ImportCases)
		api.POST("/cases/bulk/status", h.BulkStatus)
		api.POST("/cases/bulk/delete", h.BulkDelete)
		api.GET("/cases/:id", h.GetCase)
		api.PUT("/cases/:id", h.UpdateCase)
		api.PATCH("/cases/:id/status", h.UpdateStatus)
		api.DELETE("/cases/:id", h.DeleteCase)

		// Dashboard
		api.GET("/analytics/summary", h.Summary)
		api.GET("/analytics/recent", h.RecentCases)
		api.GET("/analytics/trend", h.StatusTrend)

		api.GET("/imports", h.ListImports)
		api.GET("/cache/stats", h.CacheStats)
	}
}

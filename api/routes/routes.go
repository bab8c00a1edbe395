package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AliceDavies2025/clincerta/api/handlers"
	"github.com/AliceDavies2025/clincerta/api/middleware"
)

// SetupRoutes registers all API routes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handlers.HealthCheck)

	docs := v1.Group("/documents")
	{
		docs.POST("/process", h.Document.ProcessDocument)
		docs.POST("/batch", h.Document.ProcessBatch)
		docs.GET("/status/:taskId", h.Document.GetStatus)
		docs.GET("/download/:taskId", h.Document.DownloadResult)
		docs.DELETE("/task/:taskId", h.Document.CancelTask)
	}

	cacheGroup := v1.Group("/cache")
	{
		cacheGroup.GET("/stats", h.Document.CacheStats)
		cacheGroup.DELETE("", h.Document.ClearCache)
	}

	analysis := v1.Group("/analysis")
	{
		analysis.POST("/clonability", h.Analysis.AnalyzeClonability)
		analysis.POST("/integrity", h.Analysis.AnalyzeIntegrity)
		analysis.POST("/golden-thread", h.Analysis.AnalyzeGoldenThread)
		analysis.POST("/audit", h.Analysis.AnalyzeAudit)
	}
}

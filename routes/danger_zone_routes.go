package routes

import (
	"safeher/internal/handlers"
	"safeher/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupDangerZoneRoutes sets up routes for danger zone reports and clusters
func SetupDangerZoneRoutes(r *gin.RouterGroup, zoneHandler *handlers.DangerZoneHandler, jwtSecret string) {
	// Public read routes (no auth required)
	zones := r.Group("/danger-zones")
	{
		zones.GET("/", zoneHandler.GetAllDangerZones)
		zones.GET("/near", zoneHandler.GetDangerZones)
		zones.GET("/categories", zoneHandler.GetReportCategories)
		zones.GET("/stats", zoneHandler.GetZoneStats)
	}

	// Reporting requires authentication; reports are stored without identity
	reports := r.Group("/danger-zones/reports")
	reports.Use(middleware.AuthRequired(jwtSecret))
	{
		reports.POST("/", zoneHandler.CreateReport)
		reports.GET("/", zoneHandler.GetReportsByCategory)
		reports.GET("/:id", zoneHandler.GetReport)
	}
}

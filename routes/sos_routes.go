package routes

import (
	"safeher/internal/handlers"
	"safeher/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSOSRoutes sets up routes for SOS and incident functionality
func SetupSOSRoutes(r *gin.RouterGroup, sosHandler *handlers.SOSHandler, jwtSecret string) {
	sos := r.Group("/sos")
	sos.Use(middleware.AuthRequired(jwtSecret))
	{
		sos.POST("/trigger", sosHandler.TriggerSOS)
		sos.GET("/active", sosHandler.GetActiveIncidents)
	}

	incidents := r.Group("/incidents")
	incidents.Use(middleware.AuthRequired(jwtSecret))
	{
		incidents.GET("/:id", sosHandler.GetIncident)
		incidents.PUT("/:id/resolve", sosHandler.ResolveIncident)
		incidents.GET("/:id/evidence", sosHandler.GetEvidenceReport)
	}
}

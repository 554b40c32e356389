package routes

import (
	"safeher/internal/handlers"
	"safeher/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupGuardianRoutes sets up routes for guardian functionality
func SetupGuardianRoutes(r *gin.RouterGroup, guardianHandler *handlers.GuardianHandler, jwtSecret string) {
	guardians := r.Group("/guardians")
	guardians.Use(middleware.AuthRequired(jwtSecret))
	{
		guardians.POST("/rank", guardianHandler.RankGuardians)
		guardians.GET("/:id/availability", guardianHandler.GetAvailability)
		guardians.PUT("/:id/availability", guardianHandler.UpdateAvailability)
		guardians.PUT("/:id/location", guardianHandler.UpdateLocation)
		guardians.POST("/:id/alerts/:incident_id/respond", guardianHandler.RespondToAlert)
	}
}

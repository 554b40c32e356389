package handlers

import (
	"net/http"

	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/services"
	"safeher/internal/utils"
	"safeher/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GuardianHandler struct {
	matchingService services.GuardianMatchingService
	guardianRepo    interfaces.GuardianRepository
}

func NewGuardianHandler(matchingService services.GuardianMatchingService, guardianRepo interfaces.GuardianRepository) *GuardianHandler {
	return &GuardianHandler{
		matchingService: matchingService,
		guardianRepo:    guardianRepo,
	}
}

type rankGuardiansRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// RankGuardians scores and ranks all opted-in guardians for a location
func (h *GuardianHandler) RankGuardians(c *gin.Context) {
	var request rankGuardiansRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCoordinates(request.Lat, request.Lng); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	ranked, err := h.matchingService.RankGuardians(c.Request.Context(), models.GeoPoint{Lat: request.Lat, Lng: request.Lng})
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "GUARDIAN_RANKING_FAILED", "Failed to rank guardians: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Guardians ranked successfully", ranked)
}

type respondToAlertRequest struct {
	Action models.AlertStatus `json:"action" binding:"required"`
}

// RespondToAlert records a guardian's response to an incident alert
func (h *GuardianHandler) RespondToAlert(c *gin.Context) {
	incidentID, err := primitive.ObjectIDFromHex(c.Param("incident_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid incident ID")
		return
	}

	guardianID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid guardian ID")
		return
	}

	var request respondToAlertRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	switch request.Action {
	case models.AlertStatusAccepted, models.AlertStatusResponding, models.AlertStatusDeclined:
	default:
		utils.BadRequestResponse(c, "Invalid action")
		return
	}

	err = h.matchingService.TrackGuardianResponse(c.Request.Context(), incidentID, guardianID, request.Action, nil)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "GUARDIAN_RESPONSE_FAILED", "Failed to record response: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Response recorded successfully", nil)
}

// GetAvailability returns a guardian's current availability
func (h *GuardianHandler) GetAvailability(c *gin.Context) {
	guardianID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid guardian ID")
		return
	}

	availability, err := h.matchingService.GetGuardianAvailability(c.Request.Context(), guardianID)
	if err != nil {
		utils.NotFoundResponse(c, "Guardian not found")
		return
	}

	utils.SuccessResponse(c, "Availability retrieved successfully", availability)
}

type updateAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// UpdateAvailability toggles a guardian's availability for alerts
func (h *GuardianHandler) UpdateAvailability(c *gin.Context) {
	guardianID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid guardian ID")
		return
	}

	var request updateAvailabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	err = h.matchingService.UpdateGuardianAvailability(c.Request.Context(), guardianID, *request.Available)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "AVAILABILITY_UPDATE_FAILED", "Failed to update availability: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Availability updated successfully", nil)
}

type updateLocationRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// UpdateLocation records a guardian's latest position for future rankings
func (h *GuardianHandler) UpdateLocation(c *gin.Context) {
	guardianID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid guardian ID")
		return
	}

	var request updateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCoordinates(request.Lat, request.Lng); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	err = h.guardianRepo.UpdateLocation(c.Request.Context(), guardianID, models.GeoPoint{Lat: request.Lat, Lng: request.Lng})
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOCATION_UPDATE_FAILED", "Failed to update location: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", nil)
}

package handlers

import (
	"net/http"
	"time"

	"safeher/internal/models"
	"safeher/internal/services"
	"safeher/internal/utils"
	"safeher/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSHandler struct {
	sosService services.SOSService
}

func NewSOSHandler(sosService services.SOSService) *SOSHandler {
	return &SOSHandler{
		sosService: sosService,
	}
}

type triggerSOSRequest struct {
	Lat        float64 `json:"lat" binding:"required"`
	Lng        float64 `json:"lng" binding:"required"`
	Address    string  `json:"address"`
	Accuracy   float64 `json:"accuracy"`
	DeviceInfo string  `json:"device_info"`
}

// TriggerSOS creates an incident and dispatches guardian alerts
func (h *SOSHandler) TriggerSOS(c *gin.Context) {
	var request triggerSOSRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateCoordinates(request.Lat, request.Lng); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	location := models.IncidentLocation{
		Lat:      request.Lat,
		Lng:      request.Lng,
		Address:  request.Address,
		Accuracy: request.Accuracy,
		Captured: time.Now(),
	}

	incident, notified, err := h.sosService.TriggerSOS(c.Request.Context(), userObjectID, location, request.DeviceInfo)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "SOS_TRIGGER_FAILED", "Failed to trigger SOS: "+err.Error())
		return
	}

	response := map[string]interface{}{
		"incident":           incident,
		"guardians_notified": notified,
	}

	utils.CreatedResponse(c, "SOS triggered successfully", response)
}

// GetActiveIncidents returns the caller's unresolved incidents
func (h *SOSHandler) GetActiveIncidents(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	incidents, err := h.sosService.GetActiveIncidents(c.Request.Context(), userObjectID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "INCIDENT_FETCH_FAILED", "Failed to get active incidents: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Active incidents retrieved successfully", incidents)
}

// GetIncident retrieves incident details
func (h *SOSHandler) GetIncident(c *gin.Context) {
	incidentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid incident ID")
		return
	}

	incident, err := h.sosService.GetIncident(c.Request.Context(), incidentID)
	if err != nil {
		utils.NotFoundResponse(c, "Incident not found")
		return
	}

	utils.SuccessResponse(c, "Incident retrieved successfully", incident)
}

// ResolveIncident marks an incident as resolved
func (h *SOSHandler) ResolveIncident(c *gin.Context) {
	incidentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid incident ID")
		return
	}

	if err := h.sosService.ResolveIncident(c.Request.Context(), incidentID); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "INCIDENT_RESOLVE_FAILED", "Failed to resolve incident: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Incident resolved successfully", nil)
}

// GetEvidenceReport returns the evidence record, timeline, and summary text
func (h *SOSHandler) GetEvidenceReport(c *gin.Context) {
	incidentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid incident ID")
		return
	}

	record, timeline, summary, err := h.sosService.GetEvidenceReport(c.Request.Context(), incidentID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "EVIDENCE_REPORT_FAILED", "Failed to build evidence report: "+err.Error())
		return
	}

	response := map[string]interface{}{
		"record":   record,
		"timeline": timeline,
		"summary":  summary,
	}

	utils.SuccessResponse(c, "Evidence report generated successfully", response)
}

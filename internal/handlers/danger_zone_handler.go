package handlers

import (
	"net/http"
	"strconv"
	"time"

	"safeher/internal/models"
	"safeher/internal/services"
	"safeher/internal/utils"
	"safeher/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DangerZoneHandler struct {
	zoneService   services.DangerZoneService
	defaultRadius float64
}

func NewDangerZoneHandler(zoneService services.DangerZoneService, defaultRadiusKM float64) *DangerZoneHandler {
	return &DangerZoneHandler{
		zoneService:   zoneService,
		defaultRadius: defaultRadiusKM,
	}
}

type createReportRequest struct {
	Lat         float64               `json:"lat" binding:"required"`
	Lng         float64               `json:"lng" binding:"required"`
	Category    models.ReportCategory `json:"category" binding:"required"`
	Description string                `json:"description"`
}

// CreateReport records an anonymous danger zone report
func (h *DangerZoneHandler) CreateReport(c *gin.Context) {
	var request createReportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	report := &models.DangerZoneReport{
		Lat:         request.Lat,
		Lng:         request.Lng,
		Category:    request.Category,
		Description: request.Description,
		Timestamp:   time.Now(),
	}

	if err := validators.ValidateReport(report); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	if err := h.zoneService.CreateReport(c.Request.Context(), report); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "REPORT_CREATION_FAILED", "Failed to create report: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Report created successfully", report)
}

// GetDangerZones returns clustered danger zones near a location
func (h *DangerZoneHandler) GetDangerZones(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid latitude")
		return
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid longitude")
		return
	}

	if err := validators.ValidateCoordinates(lat, lng); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	radiusKM := h.defaultRadius
	if raw := c.Query("radius_km"); raw != "" {
		radiusKM, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKM <= 0 {
			utils.BadRequestResponse(c, "Invalid radius")
			return
		}
	}

	zones, err := h.zoneService.GetDangerZones(c.Request.Context(), lat, lng, radiusKM)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "ZONE_FETCH_FAILED", "Failed to get danger zones: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Danger zones retrieved successfully", zones)
}

// GetAllDangerZones returns every clustered danger zone
func (h *DangerZoneHandler) GetAllDangerZones(c *gin.Context) {
	zones, err := h.zoneService.GetAllDangerZones(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "ZONE_FETCH_FAILED", "Failed to get danger zones: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Danger zones retrieved successfully", zones)
}

// GetReportCategories lists the accepted report categories
func (h *DangerZoneHandler) GetReportCategories(c *gin.Context) {
	utils.SuccessResponse(c, "Categories retrieved successfully", models.ReportCategories)
}

// GetReport returns one raw report
func (h *DangerZoneHandler) GetReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID")
		return
	}

	report, err := h.zoneService.GetReport(c.Request.Context(), reportID)
	if err != nil {
		utils.NotFoundResponse(c, "Report not found")
		return
	}

	utils.SuccessResponse(c, "Report retrieved successfully", report)
}

// GetReportsByCategory lists raw reports for one category
func (h *DangerZoneHandler) GetReportsByCategory(c *gin.Context) {
	category := models.ReportCategory(c.Query("category"))

	reports, err := h.zoneService.GetReportsByCategory(c.Request.Context(), category)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Reports retrieved successfully", reports)
}

// GetZoneStats returns aggregate counts over reports and clusters
func (h *DangerZoneHandler) GetZoneStats(c *gin.Context) {
	stats, err := h.zoneService.GetZoneStats(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "ZONE_STATS_FAILED", "Failed to compute zone stats: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Zone stats retrieved successfully", stats)
}

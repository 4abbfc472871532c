package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/service"
	"github.com/fleetrisk/telematics-backend-go/pkg/response"
)

// AnomalyHandler handles HTTP requests for analysis runs and their results
type AnomalyHandler struct {
	service *service.AnomalyService
}

// NewAnomalyHandler creates a new anomaly handler
func NewAnomalyHandler(service *service.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{service: service}
}

// Run handles POST /api/v1/analysis/run
func (h *AnomalyHandler) Run(c *gin.Context) {
	run, err := h.service.RunAnalysis(c.Request.Context())
	if err != nil {
		response.InternalError(c, fmt.Sprintf("analysis failed: %v", err))
		return
	}
	response.Success(c, run)
}

// LatestRun handles GET /api/v1/analysis/latest
func (h *AnomalyHandler) LatestRun(c *gin.Context) {
	run, err := h.service.LatestRun()
	if err != nil {
		response.InternalError(c, "failed to get latest run")
		return
	}
	if run == nil {
		response.NotFound(c, "no completed analysis run")
		return
	}
	response.Success(c, run)
}

// GetFlaggedTrips handles GET /api/v1/analysis/flagged
func (h *AnomalyHandler) GetFlaggedTrips(c *gin.Context) {
	var filter models.FlaggedTripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	flagged, total, err := h.service.GetFlaggedTrips(filter)
	if err != nil {
		h.resultError(c, err, "failed to get flagged trips")
		return
	}

	response.Success(c, gin.H{
		"data":  flagged,
		"total": total,
	})
}

// GetUserProfiles handles GET /api/v1/analysis/users
func (h *AnomalyHandler) GetUserProfiles(c *gin.Context) {
	var filter models.UserProfileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	profiles, total, err := h.service.GetUserProfiles(filter)
	if err != nil {
		h.resultError(c, err, "failed to get user profiles")
		return
	}

	response.Success(c, gin.H{
		"data":  profiles,
		"total": total,
	})
}

// FleetSummary handles GET /api/v1/analysis/summary
func (h *AnomalyHandler) FleetSummary(c *gin.Context) {
	summary, err := h.service.FleetSummary()
	if err != nil {
		h.resultError(c, err, "failed to compute fleet summary")
		return
	}
	response.Success(c, summary)
}

// Export handles GET /api/v1/analysis/export and streams the two-sheet
// report workbook.
func (h *AnomalyHandler) Export(c *gin.Context) {
	// Resolve the run before touching headers so a missing run still
	// gets a clean JSON 404.
	run, err := h.service.LatestRun()
	if err != nil {
		response.InternalError(c, "failed to get latest run")
		return
	}
	if run == nil {
		response.NotFound(c, service.ErrNoCompletedRun.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="trip_anomaly_report.xlsx"`)

	if err := h.service.ExportWorkbook(c.Writer); err != nil {
		if errors.Is(err, service.ErrNoCompletedRun) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, fmt.Sprintf("failed to export workbook: %v", err))
	}
}

func (h *AnomalyHandler) resultError(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrNoCompletedRun) {
		response.NotFound(c, err.Error())
		return
	}
	response.InternalError(c, msg)
}

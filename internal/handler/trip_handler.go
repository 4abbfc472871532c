package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetrisk/telematics-backend-go/internal/ingest"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/service"
	"github.com/fleetrisk/telematics-backend-go/pkg/response"
)

// TripHandler handles HTTP requests for trip ingestion and queries
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// Ingest handles POST /api/v1/trips/ingest. The request body carries the
// trip dataset as a multipart CSV file under the "file" field.
func (h *TripHandler) Ingest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing csv upload under 'file'")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("failed to open upload: %v", err))
		return
	}
	defer f.Close()

	count, err := h.service.IngestCSV(f)
	if err != nil {
		var schemaErr *ingest.SchemaError
		if errors.As(err, &schemaErr) {
			// Name the offending columns so the caller can fix the
			// source data without re-running blind.
			response.Error(c, http.StatusUnprocessableEntity, schemaErr.Error())
			return
		}
		response.InternalError(c, fmt.Sprintf("failed to ingest trips: %v", err))
		return
	}

	response.Success(c, gin.H{"ingested": count})
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	var filter models.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	trips, total, err := h.service.GetTrips(filter)
	if err != nil {
		response.InternalError(c, "failed to get trips")
		return
	}

	response.Success(c, gin.H{
		"data":  trips,
		"total": total,
	})
}

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetrisk/telematics-backend-go/internal/config"
	"github.com/fleetrisk/telematics-backend-go/internal/handler"
	"github.com/fleetrisk/telematics-backend-go/internal/middleware"
	"github.com/fleetrisk/telematics-backend-go/internal/repository"
	"github.com/fleetrisk/telematics-backend-go/internal/service"
)

// SetupRouter wires repositories, services and handlers into the gin engine.
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS for the analyst frontend
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Telematics Anomaly API is running",
		})
	})

	tripRepo := repository.NewTripRepository(db)
	tripService := service.NewTripService(tripRepo)
	tripHandler := handler.NewTripHandler(tripService)

	anomalyService := service.NewAnomalyService(db, cfg.Thresholds)
	anomalyHandler := handler.NewAnomalyHandler(anomalyService)

	// A full-dataset run is expensive; keep the trigger behind a low limit
	runLimiter := middleware.NewRateLimiter(5, time.Minute)

	api := r.Group("/api/v1")
	{
		trips := api.Group("/trips")
		{
			trips.POST("/ingest", tripHandler.Ingest)
			trips.GET("", tripHandler.GetTrips)
		}

		analysis := api.Group("/analysis")
		{
			analysis.POST("/run", runLimiter.Middleware(), anomalyHandler.Run)
			analysis.GET("/latest", anomalyHandler.LatestRun)
			analysis.GET("/flagged", anomalyHandler.GetFlaggedTrips)
			analysis.GET("/users", anomalyHandler.GetUserProfiles)
			analysis.GET("/summary", anomalyHandler.FleetSummary)
			analysis.GET("/export", anomalyHandler.Export)
		}
	}

	return r
}

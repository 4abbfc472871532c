package detect

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fleetrisk/telematics-backend-go/internal/analysis"
	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
	"github.com/fleetrisk/telematics-backend-go/internal/repository"
)

// AnalyzerName is the registry key of the trip anomaly analyzer.
const AnalyzerName = "trip_anomaly"

// TripAnomalyAnalyzer runs the rule-based anomaly pipeline over the
// ingested trip set and persists flagged trips and user risk profiles.
type TripAnomalyAnalyzer struct {
	*analysis.BaseAnalyzer
	trips   *repository.TripRepository
	results *repository.ResultRepository
	runs    *repository.RunRepository
}

// NewTripAnomalyAnalyzer creates a new trip anomaly analyzer
func NewTripAnomalyAnalyzer(db *sql.DB) analysis.Analyzer {
	return &TripAnomalyAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, AnalyzerName),
		trips:        repository.NewTripRepository(db),
		results:      repository.NewResultRepository(db),
		runs:         repository.NewRunRepository(db),
	}
}

// Analyze executes the pipeline for one run.
func (a *TripAnomalyAnalyzer) Analyze(ctx context.Context, runID int64, th anomaly.Thresholds) error {
	log.Printf("[TripAnomalyAnalyzer] Starting analysis (run_id=%d)", runID)

	if err := a.runs.MarkRunning(runID); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}

	trips, err := a.trips.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load trips: %w", err)
	}
	if len(trips) == 0 {
		log.Printf("[TripAnomalyAnalyzer] No trips to analyze")
		return a.runs.MarkCompleted(runID, `{"total_trips": 0}`)
	}

	res := anomaly.Run(trips, th)

	if err := a.results.SaveResults(runID, res.FlaggedTrips, res.UserProfiles); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	summary := map[string]interface{}{
		"total_trips":     res.TotalTrips,
		"flagged_trips":   len(res.FlaggedTrips),
		"excluded_trips":  len(res.Excluded),
		"high_risk_users": len(res.UserProfiles),
	}
	if len(res.Excluded) > 0 {
		summary["excluded"] = res.Excluded
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := a.runs.MarkCompleted(runID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}

	log.Printf("[TripAnomalyAnalyzer] Analysis completed: %d trips, %d flagged, %d high-risk users",
		res.TotalTrips, len(res.FlaggedTrips), len(res.UserProfiles))
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(AnalyzerName, NewTripAnomalyAnalyzer)
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fleetrisk/telematics-backend-go/internal/analysis"
	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
	"github.com/fleetrisk/telematics-backend-go/internal/export"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/repository"
	"github.com/fleetrisk/telematics-backend-go/internal/stats"
)

// analyzerName must match a registered analyzer; the detect package
// registers it in its init.
const analyzerName = "trip_anomaly"

// AnomalyService orchestrates analysis runs and serves their results.
type AnomalyService struct {
	db         *sql.DB
	thresholds anomaly.Thresholds
	results    *repository.ResultRepository
	runs       *repository.RunRepository
}

// NewAnomalyService creates a new anomaly service
func NewAnomalyService(db *sql.DB, th anomaly.Thresholds) *AnomalyService {
	return &AnomalyService{
		db:         db,
		thresholds: th,
		results:    repository.NewResultRepository(db),
		runs:       repository.NewRunRepository(db),
	}
}

// RunAnalysis executes one analysis run over the ingested trips and returns
// the finished run record. The service's thresholds are frozen into the run
// before it starts.
func (s *AnomalyService) RunAnalysis(ctx context.Context) (*repository.AnalysisRun, error) {
	analyzer := analysis.GetAnalyzer(analyzerName, s.db)
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer %q is not registered", analyzerName)
	}

	thJSON, _ := json.Marshal(s.thresholds)
	runID, err := s.runs.Create(analyzerName, string(thJSON))
	if err != nil {
		return nil, err
	}

	if err := analyzer.Analyze(ctx, runID, s.thresholds); err != nil {
		if markErr := s.runs.MarkFailed(runID, err.Error()); markErr != nil {
			log.Printf("[AnomalyService] Failed to mark run %d failed: %v", runID, markErr)
		}
		return nil, fmt.Errorf("analysis run %d failed: %w", runID, err)
	}

	return s.runs.GetByID(runID)
}

// LatestRun returns the most recent completed run, or nil when the
// pipeline has not been run yet.
func (s *AnomalyService) LatestRun() (*repository.AnalysisRun, error) {
	return s.runs.LatestCompleted(analyzerName)
}

// GetFlaggedTrips serves the flagged trips of the latest completed run.
func (s *AnomalyService) GetFlaggedTrips(filter models.FlaggedTripFilter) ([]models.FlaggedTrip, int64, error) {
	run, err := s.requireRun()
	if err != nil {
		return nil, 0, err
	}
	return s.results.GetFlaggedTrips(run.ID, filter)
}

// GetUserProfiles serves the user risk profiles of the latest completed run.
func (s *AnomalyService) GetUserProfiles(filter models.UserProfileFilter) ([]models.UserRiskProfile, int64, error) {
	run, err := s.requireRun()
	if err != nil {
		return nil, 0, err
	}
	return s.results.GetUserProfiles(run.ID, filter)
}

// FleetSummary computes fleet-level statistics over the latest completed
// run's profiles.
func (s *AnomalyService) FleetSummary() (*models.FleetSummary, error) {
	run, err := s.requireRun()
	if err != nil {
		return nil, err
	}

	profiles, err := s.results.AllUserProfiles(run.ID)
	if err != nil {
		return nil, err
	}

	var runSummary struct {
		TotalTrips    int `json:"total_trips"`
		FlaggedTrips  int `json:"flagged_trips"`
		ExcludedTrips int `json:"excluded_trips"`
	}
	if run.ResultSummary != "" {
		if err := json.Unmarshal([]byte(run.ResultSummary), &runSummary); err != nil {
			return nil, fmt.Errorf("failed to parse run summary: %w", err)
		}
	}

	pcts := make([]float64, len(profiles))
	for i, p := range profiles {
		pcts[i] = p.PctSuspicious
	}

	return &models.FleetSummary{
		TotalTrips:    runSummary.TotalTrips,
		FlaggedTrips:  runSummary.FlaggedTrips,
		ExcludedTrips: runSummary.ExcludedTrips,
		HighRiskUsers: len(profiles),
		MeanPctSusp:   stats.Mean(pcts),
		MedianPctSusp: stats.Median(pcts),
		P95PctSusp:    stats.Percentile(pcts, 95),
		MaxPctSusp:    stats.Max(pcts),
	}, nil
}

// ExportWorkbook streams the two-sheet report workbook for the latest
// completed run.
func (s *AnomalyService) ExportWorkbook(w io.Writer) error {
	run, err := s.requireRun()
	if err != nil {
		return err
	}

	flagged, err := s.results.AllFlaggedTrips(run.ID)
	if err != nil {
		return err
	}
	profiles, err := s.results.AllUserProfiles(run.ID)
	if err != nil {
		return err
	}

	return export.Write(w, flagged, profiles)
}

// ErrNoCompletedRun is returned when results are requested before any
// analysis run has completed.
var ErrNoCompletedRun = errors.New("no completed analysis run")

func (s *AnomalyService) requireRun() (*repository.AnalysisRun, error) {
	run, err := s.runs.LatestCompleted(analyzerName)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrNoCompletedRun
	}
	return run, nil
}

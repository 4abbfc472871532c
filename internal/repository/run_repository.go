package repository

import (
	"database/sql"
	"fmt"
)

// AnalysisRun tracks one execution of an analyzer.
type AnalysisRun struct {
	ID             int64   `json:"id"`
	Analyzer       string  `json:"analyzer"`
	Status         string  `json:"status"`
	ThresholdsJSON string  `json:"thresholds_json,omitempty"`
	ResultSummary  string  `json:"result_summary,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at"`
	StartedAt      *string `json:"started_at,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
}

// Run statuses
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRepository handles database operations for analysis runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a pending run and returns its id.
func (r *RunRepository) Create(analyzer, thresholdsJSON string) (int64, error) {
	res, err := r.db.Exec(
		"INSERT INTO analysis_runs (analyzer, status, thresholds_json) VALUES (?, ?, ?)",
		analyzer, RunStatusPending, thresholdsJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// MarkRunning marks a run as running
func (r *RunRepository) MarkRunning(runID int64) error {
	_, err := r.db.Exec(`
		UPDATE analysis_runs
		SET status = ?, started_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusRunning, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %d running: %w", runID, err)
	}
	return nil
}

// MarkCompleted marks a run as completed with a result summary
func (r *RunRepository) MarkCompleted(runID int64, resultSummary string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_runs
		SET status = ?, result_summary = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusCompleted, resultSummary, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %d completed: %w", runID, err)
	}
	return nil
}

// MarkFailed marks a run as failed with an error message
func (r *RunRepository) MarkFailed(runID int64, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_runs
		SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusFailed, errorMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %d failed: %w", runID, err)
	}
	return nil
}

// GetByID returns one run, or nil if it does not exist.
func (r *RunRepository) GetByID(runID int64) (*AnalysisRun, error) {
	return r.getOne("SELECT id, analyzer, status, thresholds_json, result_summary, error_message, created_at, started_at, completed_at FROM analysis_runs WHERE id = ?", runID)
}

// LatestCompleted returns the most recent completed run for an analyzer,
// or nil when none has completed yet.
func (r *RunRepository) LatestCompleted(analyzer string) (*AnalysisRun, error) {
	return r.getOne(`
		SELECT id, analyzer, status, thresholds_json, result_summary, error_message, created_at, started_at, completed_at
		FROM analysis_runs
		WHERE analyzer = ? AND status = ?
		ORDER BY id DESC LIMIT 1
	`, analyzer, RunStatusCompleted)
}

func (r *RunRepository) getOne(query string, args ...interface{}) (*AnalysisRun, error) {
	var run AnalysisRun
	var thresholds, summary, errMsg sql.NullString
	var startedAt, completedAt sql.NullString

	err := r.db.QueryRow(query, args...).Scan(
		&run.ID, &run.Analyzer, &run.Status,
		&thresholds, &summary, &errMsg,
		&run.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.ThresholdsJSON = thresholds.String
	run.ResultSummary = summary.String
	run.ErrorMessage = errMsg.String
	if startedAt.Valid {
		run.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.String
	}

	return &run, nil
}

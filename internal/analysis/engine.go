package analysis

import (
	"context"
	"database/sql"

	"github.com/fleetrisk/telematics-backend-go/internal/anomaly"
)

// Analyzer is the interface that all analysis skills must implement.
type Analyzer interface {
	// Analyze executes the analysis for the given run using the
	// thresholds frozen at run creation.
	Analyze(ctx context.Context, runID int64, th anomaly.Thresholds) error

	// GetName returns the name of the analyzer
	GetName() string
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	DB   *sql.DB
	Name string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(db *sql.DB, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		DB:   db,
		Name: name,
	}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(db *sql.DB) Analyzer

// AnalyzerRegistry maps analyzer names to factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory under a name
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	AnalyzerRegistry[name] = factory
}

// GetAnalyzer retrieves an analyzer instance by name, or nil when the name
// is not registered.
func GetAnalyzer(name string, db *sql.DB) Analyzer {
	factory, ok := AnalyzerRegistry[name]
	if !ok {
		return nil
	}
	return factory(db)
}

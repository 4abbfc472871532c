package service

import (
	"io"

	"github.com/fleetrisk/telematics-backend-go/internal/ingest"
	"github.com/fleetrisk/telematics-backend-go/internal/models"
	"github.com/fleetrisk/telematics-backend-go/internal/repository"
)

// TripService handles ingestion and queries of the trip dataset.
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// IngestCSV loads a trip dataset from CSV and replaces the stored trip set
// with it. Schema validation happens before anything is written; a schema
// error leaves the previous dataset untouched.
func (s *TripService) IngestCSV(r io.Reader) (int, error) {
	trips, err := ingest.Load(r)
	if err != nil {
		return 0, err
	}
	if err := s.repo.ReplaceAll(trips); err != nil {
		return 0, err
	}
	return len(trips), nil
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(filter models.TripFilter) ([]models.TripRecord, int64, error) {
	return s.repo.GetTrips(filter)
}

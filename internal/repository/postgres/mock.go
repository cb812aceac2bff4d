package postgres

import (
	"context"
	"time"

	"github.com/smartcity/evsite/internal/domain"
)

// MockRepository implements domain.PredictionRepository for demo mode
type MockRepository struct{}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// RecordPrediction is a no-op in mock mode
func (r *MockRepository) RecordPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	return nil
}

// RecentPredictions returns a single mock log entry
func (r *MockRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLogEntry, error) {
	return []domain.PredictionLogEntry{
		{
			AnalysisID:      "ev_mock",
			LocationName:    "Downtown Business District",
			AnnualROI:       35,
			ClusterID:       0,
			ViabilityScore:  95,
			InvestmentGrade: "A+ (Excellent)",
			RiskLevel:       "Low Risk",
			CreatedAt:       time.Now().Add(-24 * time.Hour),
		},
	}, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

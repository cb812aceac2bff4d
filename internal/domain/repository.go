package domain

import (
	"context"
	"time"
)

// PredictionRecord is a completed single-location analysis with its input.
type PredictionRecord struct {
	AnalysisID   string
	LocationName string
	Location     LocationRecord
	Result       PredictionResult
	CreatedAt    time.Time
}

// PredictionLogEntry is a persisted summary of a past analysis.
type PredictionLogEntry struct {
	AnalysisID      string    `json:"analysis_id"`
	LocationName    string    `json:"location_name"`
	AnnualROI       float64   `json:"annual_roi"`
	ClusterID       int       `json:"cluster_id"`
	ViabilityScore  float64   `json:"viability_score"`
	InvestmentGrade string    `json:"investment_grade"`
	RiskLevel       string    `json:"risk_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// PredictionRecorder receives completed analyses for auditing or streaming.
type PredictionRecorder interface {
	RecordPrediction(ctx context.Context, rec PredictionRecord) error
}

// PredictionRepository defines the interface for prediction log persistence.
// The domain owns the interface; storage backends implement it.
type PredictionRepository interface {
	PredictionRecorder

	// RecentPredictions returns the newest log entries first
	RecentPredictions(ctx context.Context, limit int) ([]PredictionLogEntry, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}

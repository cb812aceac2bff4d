package domain

import "time"

// ROIResult is the financial projection for a site.
type ROIResult struct {
	AnnualROI              float64 `json:"annual_roi"`
	PaybackPeriod          float64 `json:"payback_period"`
	BreakEvenMonths        float64 `json:"break_even_months"`
	EstimatedAnnualRevenue int64   `json:"estimated_annual_revenue"`
}

// ClusterResult is the location archetype assigned to a site.
type ClusterResult struct {
	ClusterID   int    `json:"cluster_id"`
	ClusterName string `json:"cluster_name"`
	Description string `json:"description"`
}

// Predictions groups the model outputs of a PredictionResult.
type Predictions struct {
	ROI          ROIResult     `json:"roi"`
	LocationType ClusterResult `json:"location_type"`
}

// PredictionResult is the full viability analysis of one location.
type PredictionResult struct {
	Predictions     Predictions `json:"predictions"`
	Recommendations []string    `json:"recommendations"`
	ViabilityScore  float64     `json:"viability_score"`
	InvestmentGrade string      `json:"investment_grade"`
	RiskLevel       string      `json:"risk_level"`
}

// Analysis is the single-location API response.
type Analysis struct {
	PredictionResult
	Timestamp    time.Time `json:"timestamp"`
	LocationName string    `json:"location_name"`
	AnalysisID   string    `json:"analysis_id"`
}

// BatchItem is one positional entry of a batch: a prediction or an error.
type BatchItem struct {
	*PredictionResult
	Error         string `json:"error,omitempty"`
	LocationIndex int    `json:"location_index"`
	LocationName  string `json:"location_name"`
}

// Failed reports whether the item carries an error instead of a prediction.
func (i BatchItem) Failed() bool {
	return i.Error != ""
}

// BatchResult is the batch API response.
type BatchResult struct {
	BatchID            string      `json:"batch_id"`
	TotalLocations     int         `json:"total_locations"`
	SuccessfulAnalysis int         `json:"successful_analysis"`
	Results            []BatchItem `json:"results"`
	Timestamp          time.Time   `json:"timestamp"`
}

// ModelInfo describes one entry of the model registry.
type ModelInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Status string `json:"status"`
}

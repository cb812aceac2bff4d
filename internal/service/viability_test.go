package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcity/evsite/internal/domain"
)

func TestInvestmentGrade(t *testing.T) {
	tests := []struct {
		roi  float64
		want string
	}{
		{40, "A+ (Excellent)"},
		{25, "A+ (Excellent)"},
		{24.99, "A (Very Good)"},
		{20, "A (Very Good)"},
		{15, "B+ (Good)"},
		{10, "B (Average)"},
		{5, "C (Fair)"},
		{4.99, "D (Poor)"},
		{-10, "D (Poor)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InvestmentGrade(tt.roi), "roi %v", tt.roi)
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		roi  float64
		want string
	}{
		{20, "Low Risk"},
		{19.9, "Moderate Risk"},
		{12, "Moderate Risk"},
		{8, "High Risk"},
		{7.9, "Very High Risk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.roi), "roi %v", tt.roi)
	}
}

func TestViabilityScore(t *testing.T) {
	roi := func(v float64) domain.ROIResult { return domain.ROIResult{AnnualROI: v} }
	cluster := func(id int) domain.ClusterResult { return domain.ClusterResult{ClusterID: id} }

	assert.Equal(t, 95.0, ViabilityScore(roi(30), cluster(0)))
	assert.Equal(t, 60.0, ViabilityScore(roi(15), cluster(2)))
	assert.Equal(t, 35.0, ViabilityScore(roi(5), cluster(4)))
	assert.Equal(t, 90.0, ViabilityScore(roi(100), cluster(1)))
	assert.Equal(t, 85.0, ViabilityScore(roi(25), cluster(3)))
	assert.Equal(t, 30.0, ViabilityScore(roi(5), cluster(42)), "unknown archetype earns default points")
	assert.Equal(t, 0.0, ViabilityScore(roi(-50), cluster(4)), "score is clamped at zero")
}

func TestScoreViability(t *testing.T) {
	v := ScoreViability(domain.ROIResult{AnnualROI: 18}, domain.ClusterResult{ClusterID: 1})
	assert.Equal(t, Viability{Score: 76, Grade: "B+ (Good)", Risk: "Moderate Risk"}, v)
}

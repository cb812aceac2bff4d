package service

import (
	"math"

	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/pkg/utils"
)

// Viability is the composite investment assessment of a site.
type Viability struct {
	Score float64
	Grade string
	Risk  string
}

const (
	roiPointsPerPercent  = 2.0
	maxROIPoints         = 50.0
	defaultClusterPoints = 20.0
	maxViabilityScore    = 100.0
)

var clusterPoints = map[int]float64{
	0: 45,
	1: 40,
	2: 30,
	3: 35,
	4: 25,
}

// roiBand maps an inclusive ROI floor to a label. Bands are ordered high to low.
type roiBand struct {
	min   float64
	label string
}

var investmentGrades = []roiBand{
	{25, "A+ (Excellent)"},
	{20, "A (Very Good)"},
	{15, "B+ (Good)"},
	{10, "B (Average)"},
	{5, "C (Fair)"},
	{math.Inf(-1), "D (Poor)"},
}

var riskLevels = []roiBand{
	{20, "Low Risk"},
	{12, "Moderate Risk"},
	{8, "High Risk"},
	{math.Inf(-1), "Very High Risk"},
}

func bandFor(bands []roiBand, roi float64) string {
	for _, b := range bands {
		if roi >= b.min {
			return b.label
		}
	}
	return bands[len(bands)-1].label
}

// InvestmentGrade returns the letter grade for an annual ROI.
func InvestmentGrade(roi float64) string {
	return bandFor(investmentGrades, roi)
}

// RiskLevel returns the risk band for an annual ROI.
func RiskLevel(roi float64) string {
	return bandFor(riskLevels, roi)
}

// ViabilityScore blends ROI and archetype desirability into a 0-100 score.
func ViabilityScore(roi domain.ROIResult, cluster domain.ClusterResult) float64 {
	roiScore := math.Min(roi.AnnualROI*roiPointsPerPercent, maxROIPoints)

	archetypeScore, ok := clusterPoints[cluster.ClusterID]
	if !ok {
		archetypeScore = defaultClusterPoints
	}

	return utils.Clamp(roiScore+archetypeScore, 0, maxViabilityScore)
}

// ScoreViability computes score, grade and risk for a site.
func ScoreViability(roi domain.ROIResult, cluster domain.ClusterResult) Viability {
	return Viability{
		Score: ViabilityScore(roi, cluster),
		Grade: InvestmentGrade(roi.AnnualROI),
		Risk:  RiskLevel(roi.AnnualROI),
	}
}

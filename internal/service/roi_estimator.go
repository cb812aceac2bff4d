package service

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/smartcity/evsite/internal/domain"
)

// Regressor is a trained model producing a base annual ROI percentage.
type Regressor interface {
	PredictROI(ctx context.Context, features domain.FeatureVector) (float64, error)
}

type roiBackendKind int

const (
	roiFallback roiBackendKind = iota
	roiTrained
)

// ROIBackend selects how base ROI is produced. Build one with TrainedROI or
// FallbackROI; the zero value is the fallback heuristic.
type ROIBackend struct {
	kind   roiBackendKind
	model  Regressor
	source string
}

// TrainedROI wraps a loaded regression model.
func TrainedROI(model Regressor, source string) ROIBackend {
	return ROIBackend{kind: roiTrained, model: model, source: source}
}

// FallbackROI selects the deterministic threshold heuristic.
func FallbackROI() ROIBackend {
	return ROIBackend{kind: roiFallback}
}

// Trained reports whether a trained model backs the estimator.
func (b ROIBackend) Trained() bool {
	return b.kind == roiTrained
}

// Info describes the backend for the model listing.
func (b ROIBackend) Info() domain.ModelInfo {
	switch b.kind {
	case roiTrained:
		return domain.ModelInfo{Name: "roi_predictor", Type: modelTypeName(b.model), Source: b.source, Status: "loaded"}
	default:
		return domain.ModelInfo{Name: "roi_predictor", Type: "FallbackHeuristic", Status: "loaded"}
	}
}

const (
	fallbackBaseROI = 12.0
	fallbackROICap  = 35.0
	minAdjustedROI  = 5.0

	baseAnnualRevenue   = 50000.0
	chargeConversion    = 0.1
	daysPerYear         = 365.0
	revenuePerCharge    = 15.0
	monthsPerYear       = 12.0
	paybackNumeratorPct = 100.0
)

// DefaultROIResult is the conservative projection returned when the ROI model fails.
var DefaultROIResult = domain.ROIResult{
	AnnualROI:              15.0,
	PaybackPeriod:          6.7,
	BreakEvenMonths:        80,
	EstimatedAnnualRevenue: 120000,
}

// featureRule adds increment to the fallback ROI when the feature crosses threshold.
type featureRule struct {
	feature   int
	below     bool
	threshold float64
	increment float64
}

func (r featureRule) applies(v domain.FeatureVector) bool {
	if r.below {
		return v[r.feature] < r.threshold
	}
	return v[r.feature] > r.threshold
}

// income_level is compared in thousands of dollars.
var fallbackROIRules = []featureRule{
	{feature: domain.FeatureTrafficDensity, threshold: 5, increment: 3},
	{feature: domain.FeatureIncomeLevel, threshold: 75, increment: 2},
	{feature: domain.FeatureEVAdoptionRate, threshold: 20, increment: 4},
	{feature: domain.FeatureCompetitionScore, below: true, threshold: 3, increment: 2},
	{feature: domain.FeatureGovernmentSubsidy, threshold: 0, increment: 3},
}

// siteAdjustment shifts ROI when a raw site flag is set.
type siteAdjustment struct {
	name  string
	flag  func(domain.LocationAttributes) bool
	delta float64
}

var roiAdjustments = []siteAdjustment{
	{"fast_charging", func(a domain.LocationAttributes) bool { return a.FastCharging }, 5},
	{"solar_powered", func(a domain.LocationAttributes) bool { return a.SolarPowered }, 3},
	{"amenities", func(a domain.LocationAttributes) bool { return a.Amenities }, 2},
	{"high_competition", func(a domain.LocationAttributes) bool { return a.HighCompetition }, -4},
	{"high_land_cost", func(a domain.LocationAttributes) bool { return a.HighLandCost }, -3},
}

// FallbackBaseROI computes base ROI from feature thresholds, capped at 35.
func FallbackBaseROI(v domain.FeatureVector) float64 {
	roi := fallbackBaseROI
	for _, rule := range fallbackROIRules {
		if rule.applies(v) {
			roi += rule.increment
		}
	}
	return math.Min(roi, fallbackROICap)
}

// AdjustROI applies site flag adjustments and floors the result at 5.
func AdjustROI(base float64, a domain.LocationAttributes) float64 {
	adjusted := base
	for _, adj := range roiAdjustments {
		if adj.flag(a) {
			adjusted += adj.delta
		}
	}
	return math.Max(adjusted, minAdjustedROI)
}

// PaybackPeriod returns years to recover the investment, +Inf when roi <= 0.
func PaybackPeriod(roi float64) float64 {
	if roi <= 0 {
		return math.Inf(1)
	}
	return paybackNumeratorPct / roi
}

// BreakEvenMonths returns the payback period in months.
func BreakEvenMonths(roi float64) float64 {
	return PaybackPeriod(roi) * monthsPerYear
}

// EstimateRevenue projects annual charging revenue in whole dollars.
func EstimateRevenue(a domain.LocationAttributes) int64 {
	evTraffic := a.RevenueVehicles() * (a.RevenueEVAdoption() / 100) * chargeConversion
	return int64(baseAnnualRevenue + evTraffic*daysPerYear*revenuePerCharge)
}

// ROIEstimator produces the ROI projection for a site.
type ROIEstimator struct {
	backend ROIBackend
}

// NewROIEstimator creates an estimator for the given backend.
func NewROIEstimator(backend ROIBackend) *ROIEstimator {
	return &ROIEstimator{backend: backend}
}

// Estimate returns the adjusted ROI projection. When the trained model fails
// the error is returned together with DefaultROIResult, which callers use as-is.
func (e *ROIEstimator) Estimate(ctx context.Context, features domain.FeatureVector, site domain.LocationAttributes) (domain.ROIResult, error) {
	base, err := e.baseROI(ctx, features)
	if err != nil {
		return DefaultROIResult, err
	}

	roi := AdjustROI(base, site)
	return domain.ROIResult{
		AnnualROI:              roi,
		PaybackPeriod:          PaybackPeriod(roi),
		BreakEvenMonths:        BreakEvenMonths(roi),
		EstimatedAnnualRevenue: EstimateRevenue(site),
	}, nil
}

func (e *ROIEstimator) baseROI(ctx context.Context, features domain.FeatureVector) (float64, error) {
	switch e.backend.kind {
	case roiTrained:
		roi, err := e.backend.model.PredictROI(ctx, features)
		if err != nil {
			return 0, eris.Wrap(err, "roi: model prediction")
		}
		if math.IsNaN(roi) || math.IsInf(roi, 0) {
			return 0, eris.Errorf("roi: model returned non-finite value %v", roi)
		}
		return roi, nil
	case roiFallback:
		return FallbackBaseROI(features), nil
	default:
		return 0, eris.Errorf("roi: unknown backend kind %d", e.backend.kind)
	}
}

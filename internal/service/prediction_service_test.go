package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/evsite/internal/domain"
)

// panicRegressor simulates a model that crashes mid-prediction.
type panicRegressor struct{}

func (panicRegressor) PredictROI(context.Context, domain.FeatureVector) (float64, error) {
	panic("corrupt model weights")
}

func downtownScenario() domain.LocationRecord {
	return domain.LocationRecord{
		"daily_vehicles":     15000,
		"population_density": 8500,
		"avg_income":         85000,
		"commercial_score":   85,
		"ev_adoption":        15,
		"solar_potential":    75,
		"competition":        2,
		"fast_charging":      true,
		"solar_powered":      true,
		"amenities":          true,
		"high_competition":   false,
		"high_land_cost":     false,
	}
}

func newFallbackService() *PredictionService {
	return NewPredictionService(FallbackRegistry(), 2)
}

func TestPredict_FallbackScenarioPerRule(t *testing.T) {
	loc := downtownScenario()

	attrs, err := loc.Attributes()
	require.NoError(t, err)
	features := BuildFeatures(attrs)

	// Each fallback rule, checked against the features it reads.
	assert.Greater(t, features[domain.FeatureTrafficDensity], 5.0, "traffic rule +3")
	assert.Greater(t, features[domain.FeatureIncomeLevel], 75.0, "income rule +2")
	assert.LessOrEqual(t, features[domain.FeatureEVAdoptionRate], 20.0, "ev adoption rule skipped")
	assert.Less(t, features[domain.FeatureCompetitionScore], 3.0, "competition rule +2")
	assert.Zero(t, features[domain.FeatureGovernmentSubsidy], "subsidy rule skipped")

	base := 12.0 + 3 + 2 + 2
	assert.Equal(t, base, FallbackBaseROI(features))

	assert.LessOrEqual(t, base, 35.0)

	adjusted := base + 5 + 3 + 2
	assert.Equal(t, adjusted, AdjustROI(base, attrs))

	res, err := newFallbackService().Predict(context.Background(), loc)
	require.NoError(t, err)

	roi := res.Predictions.ROI
	assert.Equal(t, adjusted, roi.AnnualROI)
	assert.InDelta(t, 100/adjusted, roi.PaybackPeriod, 1e-9)
	assert.InDelta(t, 1200/adjusted, roi.BreakEvenMonths, 1e-9)
	assert.Equal(t, int64(1281875), roi.EstimatedAnnualRevenue)

	assert.Equal(t, 2, res.Predictions.LocationType.ClusterID)
	assert.Equal(t, "Residential Area - Steady local traffic", res.Predictions.LocationType.ClusterName)

	assert.Equal(t, 50.0+30, res.ViabilityScore)
	assert.Equal(t, "A+ (Excellent)", res.InvestmentGrade)
	assert.Equal(t, "Low Risk", res.RiskLevel)
	assert.Equal(t, []string{
		"🚀 **Premium Investment** - Consider multiple charging bays",
		"☀️ **Add Solar Canopy** - Reduce electricity costs and carbon footprint",
	}, res.Recommendations)
}

func TestPredict_SampleLocation(t *testing.T) {
	res, err := newFallbackService().Predict(context.Background(), domain.SampleLocation())
	require.NoError(t, err)

	// 12 + 3 + 2 + 2 + 3 (subsidy), then +5 +3 +2
	assert.Equal(t, 32.0, res.Predictions.ROI.AnnualROI)
	assert.Equal(t, 0, res.Predictions.LocationType.ClusterID)
	assert.Equal(t, 95.0, res.ViabilityScore)
	assert.Len(t, res.Recommendations, 4)
}

func TestPredict_Idempotent(t *testing.T) {
	s := newFallbackService()
	first, err := s.Predict(context.Background(), domain.SampleLocation())
	require.NoError(t, err)
	second, err := s.Predict(context.Background(), domain.SampleLocation())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredict_DoesNotValidate(t *testing.T) {
	res, err := newFallbackService().Predict(context.Background(), domain.LocationRecord{})
	require.NoError(t, err)
	// Only the competition rule fires on an empty record; revenue uses defaults.
	assert.Equal(t, 14.0, res.Predictions.ROI.AnnualROI)
	assert.Equal(t, int64(50000+1000*0.05*0.1*365*15), res.Predictions.ROI.EstimatedAnnualRevenue)
}

func TestPredict_ModelFailureUsesDefaults(t *testing.T) {
	registry := NewModelRegistry(
		TrainedROI(stubRegressor{err: eris.New("model offline")}, "stub"),
		TrainedClusters(stubClusterer{err: eris.New("model offline")}, "stub"),
	)
	res, err := NewPredictionService(registry, 1).Predict(context.Background(), domain.SampleLocation())
	require.NoError(t, err)

	assert.Equal(t, DefaultROIResult, res.Predictions.ROI)
	assert.Equal(t, DefaultClusterResult, res.Predictions.LocationType)
	assert.Equal(t, 60.0, res.ViabilityScore)
	assert.Equal(t, "B+ (Good)", res.InvestmentGrade)
}

func TestPredict_PanicIsReturnedAsError(t *testing.T) {
	registry := NewModelRegistry(TrainedROI(panicRegressor{}, "stub"), FallbackClusters(FitPrototypeClusterer()))
	res, err := NewPredictionService(registry, 1).Predict(context.Background(), domain.SampleLocation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt model weights")
	assert.Equal(t, domain.PredictionResult{}, res)
}

func TestPredict_UncoercibleAttribute(t *testing.T) {
	loc := domain.SampleLocation()
	loc["daily_vehicles"] = map[string]any{"count": 1}
	_, err := newFallbackService().Predict(context.Background(), loc)
	assert.Error(t, err)
}

func TestModelsUnavailable(t *testing.T) {
	s := NewPredictionService(nil, 0)
	assert.Nil(t, s.Registry())

	_, err := s.Predict(context.Background(), domain.SampleLocation())
	assert.ErrorIs(t, err, ErrModelsUnavailable)
	_, err = s.Analyze(context.Background(), domain.SampleLocation())
	assert.ErrorIs(t, err, ErrModelsUnavailable)
	_, err = s.PredictBatch(context.Background(), []domain.LocationRecord{domain.SampleLocation()})
	assert.ErrorIs(t, err, ErrModelsUnavailable)
}

func TestAnalyze_MissingAvgIncome(t *testing.T) {
	loc := downtownScenario()
	delete(loc, "avg_income")

	_, err := newFallbackService().Analyze(context.Background(), loc)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"avg_income"}, verr.Missing)
}

func TestAnalyze_Metadata(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	s := newFallbackService()
	s.now = func() time.Time { return fixed }

	a, err := s.Analyze(context.Background(), domain.SampleLocation())
	require.NoError(t, err)
	assert.Equal(t, "Downtown Business District", a.LocationName)
	assert.Equal(t, fixed, a.Timestamp)
	assert.True(t, strings.HasPrefix(a.AnalysisID, "ev_"))

	b, err := s.Analyze(context.Background(), downtownScenario())
	require.NoError(t, err)
	assert.Equal(t, "Unknown Location", b.LocationName)
	assert.NotEqual(t, a.AnalysisID, b.AnalysisID)
}

func TestPredictBatch_SecondRecordInvalid(t *testing.T) {
	invalid := downtownScenario()
	delete(invalid, "population_density")

	locs := []domain.LocationRecord{downtownScenario(), invalid, domain.SampleLocation()}

	var callbacks atomic.Int32
	res, err := newFallbackService().PredictBatch(context.Background(), locs,
		WithItemCallback(func(domain.BatchItem) { callbacks.Add(1) }))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalLocations)
	assert.Equal(t, 2, res.SuccessfulAnalysis)
	require.Len(t, res.Results, 3)
	assert.EqualValues(t, 3, callbacks.Load())
	assert.True(t, strings.HasPrefix(res.BatchID, "batch_"))

	failed := res.Results[1]
	assert.True(t, failed.Failed())
	assert.Equal(t, 1, failed.LocationIndex)
	assert.Equal(t, "Location_1", failed.LocationName)
	assert.Contains(t, failed.Error, "population_density")
	assert.Nil(t, failed.PredictionResult)

	for _, i := range []int{0, 2} {
		item := res.Results[i]
		assert.False(t, item.Failed())
		assert.Equal(t, i, item.LocationIndex)
		require.NotNil(t, item.PredictionResult)
	}
	assert.Equal(t, "Location_0", res.Results[0].LocationName)
	assert.Equal(t, "Downtown Business District", res.Results[2].LocationName)
	assert.Equal(t, 29.0, res.Results[0].Predictions.ROI.AnnualROI)
	assert.Equal(t, 32.0, res.Results[2].Predictions.ROI.AnnualROI)
}

func TestPredictBatch_MatchesSinglePredictions(t *testing.T) {
	fake := faker.New()
	s := newFallbackService()

	locs := make([]domain.LocationRecord, 25)
	for i := range locs {
		locs[i] = randomLocation(fake)
	}

	res, err := s.PredictBatch(context.Background(), locs)
	require.NoError(t, err)
	require.Equal(t, len(locs), res.SuccessfulAnalysis)

	for i, loc := range locs {
		single, err := s.Predict(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, single, *res.Results[i].PredictionResult, "location %d", i)
	}
}

func TestPredictBatch_Empty(t *testing.T) {
	res, err := newFallbackService().PredictBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.TotalLocations)
	assert.Zero(t, res.SuccessfulAnalysis)
	assert.Empty(t, res.Results)
}

func TestPredict_RandomSitesStayInRange(t *testing.T) {
	fake := faker.New()
	s := newFallbackService()

	for i := 0; i < 200; i++ {
		loc := randomLocation(fake)
		res, err := s.Predict(context.Background(), loc)
		require.NoError(t, err)

		attrs, err := loc.Attributes()
		require.NoError(t, err)
		base := FallbackBaseROI(BuildFeatures(attrs))
		assert.GreaterOrEqual(t, base, 12.0)
		assert.LessOrEqual(t, base, 35.0)

		assert.GreaterOrEqual(t, res.ViabilityScore, 0.0)
		assert.LessOrEqual(t, res.ViabilityScore, 100.0)
		assert.GreaterOrEqual(t, res.Predictions.ROI.AnnualROI, 5.0)
		assert.GreaterOrEqual(t, res.Predictions.LocationType.ClusterID, 0)
		assert.Less(t, res.Predictions.LocationType.ClusterID, ArchetypeCount)
		assert.NotEmpty(t, res.Recommendations)
	}
}

func randomLocation(fake faker.Faker) domain.LocationRecord {
	return domain.LocationRecord{
		"location_name":      fake.Address().City(),
		"daily_vehicles":     fake.IntBetween(0, 60000),
		"population_density": fake.IntBetween(0, 20000),
		"avg_income":         fake.IntBetween(15000, 250000),
		"commercial_score":   fake.Float64(1, 0, 100),
		"residential_score":  fake.Float64(1, 0, 100),
		"industrial_score":   fake.Float64(1, 0, 100),
		"highway_distance":   fake.Float64(2, 0, 30),
		"mall_distance":      fake.Float64(2, 0, 30),
		"office_distance":    fake.Float64(2, 0, 30),
		"ev_adoption":        fake.Float64(1, 0, 40),
		"solar_potential":    fake.Float64(1, 0, 100),
		"land_cost":          fake.IntBetween(10000, 2000000),
		"electricity_rate":   fake.Float64(3, 0, 1),
		"subsidy_available":  fake.IntBetween(0, 50),
		"competition":        fake.IntBetween(0, 10),
		"fast_charging":      fake.Bool(),
		"solar_powered":      fake.Bool(),
		"amenities":          fake.Bool(),
		"high_competition":   fake.Bool(),
		"high_land_cost":     fake.Bool(),
	}
}

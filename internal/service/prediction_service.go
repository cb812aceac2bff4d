package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartcity/evsite/internal/domain"
)

// ErrModelsUnavailable is returned when no model registry is configured.
var ErrModelsUnavailable = eris.New("EV predictor not available")

const defaultBatchConcurrency = 4

// PredictionService runs the site viability pipeline.
type PredictionService struct {
	registry    *ModelRegistry
	roi         *ROIEstimator
	classifier  *LocationClassifier
	concurrency int
	now         func() time.Time
}

// NewPredictionService creates a service over a loaded registry. A nil
// registry yields a service that reports ErrModelsUnavailable.
func NewPredictionService(registry *ModelRegistry, batchConcurrency int) *PredictionService {
	if batchConcurrency <= 0 {
		batchConcurrency = defaultBatchConcurrency
	}
	s := &PredictionService{
		registry:    registry,
		concurrency: batchConcurrency,
		now:         time.Now,
	}
	if registry != nil {
		s.roi = NewROIEstimator(registry.ROI())
		s.classifier = NewLocationClassifier(registry.Clusters())
	}
	return s
}

// Registry returns the model registry, nil when unavailable.
func (s *PredictionService) Registry() *ModelRegistry {
	return s.registry
}

// Predict runs the full pipeline for one location. Required fields are not
// checked here. ROI and classification failures are absorbed into their
// defaults; anything else, including a panic, is returned as an error.
func (s *PredictionService) Predict(ctx context.Context, loc domain.LocationRecord) (result domain.PredictionResult, err error) {
	if s.registry == nil {
		return domain.PredictionResult{}, ErrModelsUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			result = domain.PredictionResult{}
			err = eris.Errorf("prediction: unexpected failure: %v", r)
		}
	}()

	site, err := loc.Attributes()
	if err != nil {
		return domain.PredictionResult{}, err
	}
	features := BuildFeatures(site)

	roi, err := s.roi.Estimate(ctx, features, site)
	if err != nil {
		zap.L().Warn("roi prediction failed, using default", zap.Error(err))
	}

	cluster, err := s.classifier.Classify(ctx, features)
	if err != nil {
		zap.L().Warn("cluster prediction failed, using default", zap.Error(err))
	}

	viability := ScoreViability(roi, cluster)

	return domain.PredictionResult{
		Predictions: domain.Predictions{
			ROI:          roi,
			LocationType: cluster,
		},
		Recommendations: Recommend(roi, cluster, site),
		ViabilityScore:  viability.Score,
		InvestmentGrade: viability.Grade,
		RiskLevel:       viability.Risk,
	}, nil
}

// Analyze validates one location, predicts it, and attaches request metadata.
func (s *PredictionService) Analyze(ctx context.Context, loc domain.LocationRecord) (domain.Analysis, error) {
	if s.registry == nil {
		return domain.Analysis{}, ErrModelsUnavailable
	}
	if err := loc.Validate(); err != nil {
		return domain.Analysis{}, err
	}

	name := loc.Name("Unknown Location")
	zap.L().Info("analyzing location", zap.String("location", name))

	result, err := s.Predict(ctx, loc)
	if err != nil {
		return domain.Analysis{}, err
	}

	return domain.Analysis{
		PredictionResult: result,
		Timestamp:        s.now(),
		LocationName:     name,
		AnalysisID:       "ev_" + uuid.NewString(),
	}, nil
}

// BatchOption customizes a PredictBatch call.
type BatchOption func(*batchOptions)

type batchOptions struct {
	onItem func(domain.BatchItem)
}

// WithItemCallback registers fn to run after each item completes. fn may be
// called concurrently.
func WithItemCallback(fn func(domain.BatchItem)) BatchOption {
	return func(o *batchOptions) { o.onItem = fn }
}

// PredictBatch predicts every location with bounded concurrency. Item
// failures are recorded at their index and never abort the batch.
func (s *PredictionService) PredictBatch(ctx context.Context, locations []domain.LocationRecord, opts ...BatchOption) (domain.BatchResult, error) {
	if s.registry == nil {
		return domain.BatchResult{}, ErrModelsUnavailable
	}

	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]domain.BatchItem, len(locations))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, loc := range locations {
		g.Go(func() error {
			results[i] = s.predictItem(ctx, i, loc)
			if o.onItem != nil {
				o.onItem(results[i])
			}
			return nil // don't abort batch on individual failure
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, item := range results {
		if !item.Failed() {
			succeeded++
		}
	}

	zap.L().Info("batch complete",
		zap.Int("locations", len(locations)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(locations)-succeeded),
	)

	return domain.BatchResult{
		BatchID:            "batch_" + uuid.NewString(),
		TotalLocations:     len(locations),
		SuccessfulAnalysis: succeeded,
		Results:            results,
		Timestamp:          s.now(),
	}, nil
}

func (s *PredictionService) predictItem(ctx context.Context, index int, loc domain.LocationRecord) domain.BatchItem {
	item := domain.BatchItem{
		LocationIndex: index,
		LocationName:  loc.Name(fmt.Sprintf("Location_%d", index)),
	}

	if err := loc.Validate(); err != nil {
		item.Error = err.Error()
		return item
	}

	result, err := s.Predict(ctx, loc)
	if err != nil {
		zap.L().Warn("batch item failed", zap.Int("index", index), zap.Error(err))
		item.Error = err.Error()
		return item
	}

	item.PredictionResult = &result
	return item
}

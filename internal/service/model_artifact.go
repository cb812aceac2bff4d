package service

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"

	"github.com/smartcity/evsite/internal/domain"
)

// LinearRegressor is a trained linear ROI model.
type LinearRegressor struct {
	intercept    float64
	coefficients domain.FeatureVector
}

// PredictROI returns intercept + coefficients · features.
func (m *LinearRegressor) PredictROI(_ context.Context, features domain.FeatureVector) (float64, error) {
	return m.intercept + floats.Dot(m.coefficients[:], features[:]), nil
}

type roiArtifact struct {
	Kind         string    `json:"kind"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

type clusterArtifact struct {
	Kind      string      `json:"kind"`
	Features  []string    `json:"features"`
	Centroids [][]float64 `json:"centroids"`
	Scale     []float64   `json:"scale,omitempty"`
}

// ParseROIArtifact decodes a linear ROI model artifact.
func ParseROIArtifact(data []byte) (*LinearRegressor, error) {
	var a roiArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "artifact: decode roi model")
	}
	if a.Kind != "linear" {
		return nil, eris.Errorf("artifact: unsupported roi model kind %q", a.Kind)
	}
	if err := checkFeatureOrder(a.Features); err != nil {
		return nil, err
	}

	coefficients, err := toFeatureVector(a.Coefficients)
	if err != nil {
		return nil, eris.Wrap(err, "artifact: roi coefficients")
	}
	return &LinearRegressor{intercept: a.Intercept, coefficients: coefficients}, nil
}

// ParseClusterArtifact decodes a centroid clustering model artifact.
func ParseClusterArtifact(data []byte) (*CentroidClusterer, error) {
	var a clusterArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "artifact: decode cluster model")
	}
	if a.Kind != "kmeans" {
		return nil, eris.Errorf("artifact: unsupported cluster model kind %q", a.Kind)
	}
	if err := checkFeatureOrder(a.Features); err != nil {
		return nil, err
	}

	centroids := make([]domain.FeatureVector, 0, len(a.Centroids))
	for i, raw := range a.Centroids {
		c, err := toFeatureVector(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "artifact: centroid %d", i)
		}
		centroids = append(centroids, c)
	}

	var scale *domain.FeatureVector
	if len(a.Scale) > 0 {
		s, err := toFeatureVector(a.Scale)
		if err != nil {
			return nil, eris.Wrap(err, "artifact: cluster scale")
		}
		scale = &s
	}

	return NewCentroidClusterer(centroids, scale)
}

// checkFeatureOrder rejects artifacts trained on a different feature layout.
func checkFeatureOrder(names []string) error {
	if len(names) != domain.FeatureCount {
		return eris.Errorf("artifact: expected %d features, got %d", domain.FeatureCount, len(names))
	}
	for i, name := range names {
		if name != domain.FeatureNames[i] {
			return eris.Errorf("artifact: feature %d is %q, expected %q", i, name, domain.FeatureNames[i])
		}
	}
	return nil
}

func toFeatureVector(values []float64) (domain.FeatureVector, error) {
	var v domain.FeatureVector
	if len(values) != domain.FeatureCount {
		return v, eris.Errorf("expected %d values, got %d", domain.FeatureCount, len(values))
	}
	copy(v[:], values)
	return v, nil
}

package service

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/smartcity/evsite/internal/domain"
)

// Clusterer assigns a location archetype id to a feature vector.
type Clusterer interface {
	AssignCluster(ctx context.Context, features domain.FeatureVector) (int, error)
}

type clusterBackendKind int

const (
	clusterFallback clusterBackendKind = iota
	clusterTrained
)

// ClusterBackend selects the clusterer used for classification. Build one
// with TrainedClusters or FallbackClusters.
type ClusterBackend struct {
	kind   clusterBackendKind
	model  Clusterer
	source string
}

// TrainedClusters wraps a loaded clustering model.
func TrainedClusters(model Clusterer, source string) ClusterBackend {
	return ClusterBackend{kind: clusterTrained, model: model, source: source}
}

// FallbackClusters selects the prototype clusterer fit at startup.
func FallbackClusters(model Clusterer) ClusterBackend {
	return ClusterBackend{kind: clusterFallback, model: model}
}

// Trained reports whether a trained model backs the classifier.
func (b ClusterBackend) Trained() bool {
	return b.kind == clusterTrained
}

// Info describes the backend for the model listing.
func (b ClusterBackend) Info() domain.ModelInfo {
	switch b.kind {
	case clusterTrained:
		return domain.ModelInfo{Name: "location_cluster", Type: modelTypeName(b.model), Source: b.source, Status: "loaded"}
	default:
		return domain.ModelInfo{Name: "location_cluster", Type: "Fallback" + modelTypeName(b.model), Status: "loaded"}
	}
}

// archetype is one known location cluster.
type archetype struct {
	name        string
	description string
}

var archetypes = map[int]archetype{
	0: {"Premium Urban - High traffic, high income", "Excellent location with high EV adoption potential and premium pricing capability"},
	1: {"Commercial Hub - Shopping centers, offices", "Strong commercial traffic with good revenue potential during business hours"},
	2: {"Residential Area - Steady local traffic", "Consistent residential usage with potential for loyalty programs"},
	3: {"Highway Corridor - Travel and transit focus", "High-volume transient traffic, ideal for fast charging stations"},
	4: {"Developing Area - Growth potential", "Emerging area with growth potential, lower initial returns but high future upside"},
}

// ArchetypeCount is the number of known location clusters.
const ArchetypeCount = 5

// DefaultClusterResult is returned when classification fails.
var DefaultClusterResult = domain.ClusterResult{
	ClusterID:   2,
	ClusterName: "Standard Commercial",
	Description: "Balanced location with moderate potential",
}

// DescribeCluster resolves a cluster id against the archetype table.
func DescribeCluster(id int) (domain.ClusterResult, bool) {
	a, ok := archetypes[id]
	if !ok {
		return DefaultClusterResult, false
	}
	return domain.ClusterResult{ClusterID: id, ClusterName: a.name, Description: a.description}, true
}

// LocationClassifier assigns one of the known archetypes to a site.
type LocationClassifier struct {
	backend ClusterBackend
}

// NewLocationClassifier creates a classifier for the given backend.
func NewLocationClassifier(backend ClusterBackend) *LocationClassifier {
	return &LocationClassifier{backend: backend}
}

// Classify returns the archetype for the features. On model failure or an
// unknown id the error is returned together with DefaultClusterResult.
func (c *LocationClassifier) Classify(ctx context.Context, features domain.FeatureVector) (domain.ClusterResult, error) {
	var (
		id  int
		err error
	)

	switch c.backend.kind {
	case clusterTrained, clusterFallback:
		if c.backend.model == nil {
			return DefaultClusterResult, eris.New("cluster: no clusterer configured")
		}
		id, err = c.backend.model.AssignCluster(ctx, features)
	default:
		return DefaultClusterResult, eris.Errorf("cluster: unknown backend kind %d", c.backend.kind)
	}
	if err != nil {
		return DefaultClusterResult, eris.Wrap(err, "cluster: model prediction")
	}

	result, ok := DescribeCluster(id)
	if !ok {
		return DefaultClusterResult, eris.Errorf("cluster: model returned unknown cluster %d", id)
	}
	return result, nil
}

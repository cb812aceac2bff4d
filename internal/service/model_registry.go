package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/domain"
)

// ArtifactStore fetches serialized model artifacts by location.
type ArtifactStore interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// RegistryConfig names the artifact locations to load at startup.
// http(s) locations are served by a remote model service.
type RegistryConfig struct {
	ROIArtifact     string
	ClusterArtifact string
	Timeout         time.Duration
	// RemoteRPS throttles calls to a remote model service; 0 is unlimited.
	RemoteRPS float64
}

// ModelRegistry holds the ROI and clustering backends selected at startup.
// It is read-only after construction and safe for concurrent use.
type ModelRegistry struct {
	roi      ROIBackend
	clusters ClusterBackend
}

// NewModelRegistry creates a registry from already-selected backends.
func NewModelRegistry(roi ROIBackend, clusters ClusterBackend) *ModelRegistry {
	return &ModelRegistry{roi: roi, clusters: clusters}
}

// FallbackRegistry returns a registry using only the deterministic fallbacks.
func FallbackRegistry() *ModelRegistry {
	return NewModelRegistry(FallbackROI(), FallbackClusters(FitPrototypeClusterer()))
}

// ROI returns the ROI backend.
func (r *ModelRegistry) ROI() ROIBackend { return r.roi }

// Clusters returns the clustering backend.
func (r *ModelRegistry) Clusters() ClusterBackend { return r.clusters }

// Models lists the registered models.
func (r *ModelRegistry) Models() []domain.ModelInfo {
	return []domain.ModelInfo{r.roi.Info(), r.clusters.Info()}
}

// LoadModelRegistry resolves each artifact independently; any artifact that is
// absent or fails to load leaves that model on its fallback.
func LoadModelRegistry(ctx context.Context, cfg RegistryConfig, store ArtifactStore) *ModelRegistry {
	return NewModelRegistry(
		loadROIBackend(ctx, cfg, store),
		loadClusterBackend(ctx, cfg, store),
	)
}

func loadROIBackend(ctx context.Context, cfg RegistryConfig, store ArtifactStore) ROIBackend {
	log := zap.L().With(zap.String("model", "roi_predictor"), zap.String("artifact", cfg.ROIArtifact))

	if isRemoteLocation(cfg.ROIArtifact) {
		bridge := NewMLBridge(cfg.ROIArtifact, cfg.Timeout, cfg.RemoteRPS)
		if err := bridge.Health(ctx); err != nil {
			log.Warn("remote roi model unavailable, using fallback", zap.Error(err))
			return FallbackROI()
		}
		log.Info("remote roi model connected")
		return TrainedROI(bridge, cfg.ROIArtifact)
	}

	data, ok := fetchArtifact(ctx, log, store, cfg.ROIArtifact)
	if !ok {
		return FallbackROI()
	}
	model, err := ParseROIArtifact(data)
	if err != nil {
		log.Warn("roi artifact rejected, using fallback", zap.Error(err))
		return FallbackROI()
	}
	log.Info("roi model loaded")
	return TrainedROI(model, cfg.ROIArtifact)
}

func loadClusterBackend(ctx context.Context, cfg RegistryConfig, store ArtifactStore) ClusterBackend {
	log := zap.L().With(zap.String("model", "location_cluster"), zap.String("artifact", cfg.ClusterArtifact))

	if isRemoteLocation(cfg.ClusterArtifact) {
		bridge := NewMLBridge(cfg.ClusterArtifact, cfg.Timeout, cfg.RemoteRPS)
		if err := bridge.Health(ctx); err != nil {
			log.Warn("remote cluster model unavailable, using fallback", zap.Error(err))
			return FallbackClusters(FitPrototypeClusterer())
		}
		log.Info("remote cluster model connected")
		return TrainedClusters(bridge, cfg.ClusterArtifact)
	}

	data, ok := fetchArtifact(ctx, log, store, cfg.ClusterArtifact)
	if !ok {
		return FallbackClusters(FitPrototypeClusterer())
	}
	model, err := ParseClusterArtifact(data)
	if err != nil {
		log.Warn("cluster artifact rejected, using fallback", zap.Error(err))
		return FallbackClusters(FitPrototypeClusterer())
	}
	log.Info("cluster model loaded")
	return TrainedClusters(model, cfg.ClusterArtifact)
}

func fetchArtifact(ctx context.Context, log *zap.Logger, store ArtifactStore, location string) ([]byte, bool) {
	if location == "" {
		log.Info("no artifact configured, using fallback")
		return nil, false
	}
	if store == nil {
		log.Warn("no artifact store configured, using fallback")
		return nil, false
	}

	data, err := store.Fetch(ctx, location)
	if eris.Is(err, domain.ErrArtifactNotFound) {
		log.Info("artifact not found, using fallback")
		return nil, false
	}
	if err != nil {
		log.Warn("artifact fetch failed, using fallback", zap.Error(err))
		return nil, false
	}
	return data, true
}

func isRemoteLocation(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// modelTypeName returns the bare type name of a model, e.g. "LinearRegressor".
func modelTypeName(model any) string {
	if model == nil {
		return "None"
	}
	name := fmt.Sprintf("%T", model)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

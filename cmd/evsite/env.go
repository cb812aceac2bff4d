package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/config"
	"github.com/smartcity/evsite/internal/repository/artifact"
	"github.com/smartcity/evsite/internal/service"
)

// loadRegistry builds the model registry, creating an S3 store only when an
// artifact lives in S3. If the store cannot be configured, S3 artifacts fail
// to fetch and their models fall back individually.
func loadRegistry(ctx context.Context, cfg *config.Config) *service.ModelRegistry {
	var s3Store artifact.Fetcher
	if artifact.IsS3Location(cfg.Models.ROIArtifact) || artifact.IsS3Location(cfg.Models.ClusterArtifact) {
		store, err := artifact.NewS3StoreFromConfig(ctx, cfg.AWS.Region)
		if err != nil {
			zap.L().Warn("s3 artifact store unavailable, s3 models fall back", zap.Error(err))
		} else {
			s3Store = store
		}
	}

	registry := service.LoadModelRegistry(ctx, service.RegistryConfig{
		ROIArtifact:     cfg.Models.ROIArtifact,
		ClusterArtifact: cfg.Models.ClusterArtifact,
		Timeout:         cfg.Models.Timeout(),
		RemoteRPS:       cfg.Models.RemoteRPS,
	}, artifact.NewRouter(artifact.NewFileStore(), s3Store))

	for _, m := range registry.Models() {
		zap.L().Info("model registered",
			zap.String("name", m.Name),
			zap.String("type", m.Type),
			zap.String("source", m.Source),
		)
	}
	return registry
}

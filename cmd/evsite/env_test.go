package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/evsite/internal/config"
	"github.com/smartcity/evsite/internal/domain"
	"github.com/smartcity/evsite/internal/repository/postgres"
)

// withBrokenAWSProfile makes the default AWS config chain fail to load.
func withBrokenAWSProfile(t *testing.T) {
	t.Helper()
	empty := filepath.Join(t.TempDir(), "aws-empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	t.Setenv("AWS_PROFILE", "missing-profile")
	t.Setenv("AWS_CONFIG_FILE", empty)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", empty)
}

func TestLoadRegistry_S3ConfigFailureFallsBack(t *testing.T) {
	withBrokenAWSProfile(t)

	cfg := &config.Config{
		Models: config.ModelsConfig{
			ROIArtifact:     "s3://bucket/roi.json",
			ClusterArtifact: filepath.Join(t.TempDir(), "missing-cluster.json"),
		},
		AWS: config.AWSConfig{Region: "us-east-1"},
	}

	registry := loadRegistry(context.Background(), cfg)
	require.NotNil(t, registry)
	assert.False(t, registry.ROI().Trained())
	assert.False(t, registry.Clusters().Trained())
	assert.Len(t, registry.Models(), 2)
}

func TestLoadRegistry_S3ConfigFailureKeepsLocalModel(t *testing.T) {
	withBrokenAWSProfile(t)

	centroid := make([]float64, domain.FeatureCount)
	data, err := json.Marshal(map[string]any{
		"kind":      "kmeans",
		"features":  domain.FeatureOrder(),
		"centroids": [][]float64{centroid},
	})
	require.NoError(t, err)
	clusterPath := filepath.Join(t.TempDir(), "cluster.json")
	require.NoError(t, os.WriteFile(clusterPath, data, 0o600))

	cfg := &config.Config{
		Models: config.ModelsConfig{
			ROIArtifact:     "s3://bucket/roi.json",
			ClusterArtifact: clusterPath,
		},
		AWS: config.AWSConfig{Region: "us-east-1"},
	}

	registry := loadRegistry(context.Background(), cfg)
	require.NotNil(t, registry)
	assert.False(t, registry.ROI().Trained())
	assert.True(t, registry.Clusters().Trained())
}

func TestModelsCommand_S3ConfigFailure(t *testing.T) {
	withBrokenAWSProfile(t)
	t.Setenv("EVSITE_MODELS_ROI_ARTIFACT", "s3://bucket/roi.json")

	out := execute(t, "", "models")
	assert.Contains(t, out, "FallbackHeuristic")
	assert.Contains(t, out, "FallbackCentroidClusterer")
}

func TestOpenPredictionLog(t *testing.T) {
	t.Run("no url", func(t *testing.T) {
		repo, closeRepo := openPredictionLog(context.Background(), "")
		defer closeRepo()
		assert.IsType(t, &postgres.MockRepository{}, repo)
	})

	t.Run("unreachable database", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		repo, closeRepo := openPredictionLog(ctx, "postgres://evsite@127.0.0.1:1/evsite?connect_timeout=1")
		defer closeRepo()
		assert.IsType(t, &postgres.MockRepository{}, repo)
	})
}

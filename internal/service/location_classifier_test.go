package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/evsite/internal/domain"
)

type stubClusterer struct {
	id  int
	err error
}

func (s stubClusterer) AssignCluster(context.Context, domain.FeatureVector) (int, error) {
	return s.id, s.err
}

func TestDescribeCluster(t *testing.T) {
	for id := 0; id < ArchetypeCount; id++ {
		res, ok := DescribeCluster(id)
		require.True(t, ok, "cluster %d", id)
		assert.Equal(t, id, res.ClusterID)
		assert.NotEmpty(t, res.ClusterName)
		assert.NotEmpty(t, res.Description)
	}

	res, ok := DescribeCluster(7)
	assert.False(t, ok)
	assert.Equal(t, DefaultClusterResult, res)
}

func TestClassify_Trained(t *testing.T) {
	c := NewLocationClassifier(TrainedClusters(stubClusterer{id: 3}, "stub"))
	res, err := c.Classify(context.Background(), domain.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ClusterID)
	assert.Equal(t, "Highway Corridor - Travel and transit focus", res.ClusterName)
}

func TestClassify_UnknownIDReturnsDefault(t *testing.T) {
	c := NewLocationClassifier(TrainedClusters(stubClusterer{id: 9}, "stub"))
	res, err := c.Classify(context.Background(), domain.FeatureVector{})
	require.Error(t, err)
	assert.Equal(t, DefaultClusterResult, res)
}

func TestClassify_ModelErrorReturnsDefault(t *testing.T) {
	c := NewLocationClassifier(TrainedClusters(stubClusterer{err: errors.New("down")}, "stub"))
	res, err := c.Classify(context.Background(), domain.FeatureVector{})
	require.Error(t, err)
	assert.Equal(t, 2, res.ClusterID)
	assert.Equal(t, "Standard Commercial", res.ClusterName)
	assert.Equal(t, "Balanced location with moderate potential", res.Description)
}

func TestClassify_NoModel(t *testing.T) {
	c := NewLocationClassifier(FallbackClusters(nil))
	res, err := c.Classify(context.Background(), domain.FeatureVector{})
	require.Error(t, err)
	assert.Equal(t, DefaultClusterResult, res)
}

func TestClusterBackend_Info(t *testing.T) {
	info := FallbackClusters(FitPrototypeClusterer()).Info()
	assert.Equal(t, "location_cluster", info.Name)
	assert.Equal(t, "FallbackCentroidClusterer", info.Type)
	assert.Empty(t, info.Source)

	info = TrainedClusters(FitPrototypeClusterer(), "s3://models/cluster.json").Info()
	assert.Equal(t, "CentroidClusterer", info.Type)
	assert.Equal(t, "s3://models/cluster.json", info.Source)
}

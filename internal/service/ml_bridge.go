package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/smartcity/evsite/internal/domain"
)

// MLBridge handles communication with a remote model-serving service.
// It implements both Regressor and Clusterer.
type MLBridge struct {
	serviceURL string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewMLBridge creates a new ML bridge. rps caps prediction calls per second;
// zero or less leaves them unthrottled.
func NewMLBridge(serviceURL string, timeout time.Duration, rps float64) *MLBridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
	return &MLBridge{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

type featurePayload struct {
	Features     map[string]float64 `json:"features"`
	FeatureOrder []string           `json:"feature_order"`
}

type roiResponse struct {
	AnnualROI *float64 `json:"annual_roi"`
}

type clusterResponse struct {
	ClusterID *int `json:"cluster_id"`
}

// PredictROI asks the remote model for a base ROI estimate.
func (b *MLBridge) PredictROI(ctx context.Context, features domain.FeatureVector) (float64, error) {
	var resp roiResponse
	if err := b.post(ctx, "/predict/roi", features, &resp); err != nil {
		return 0, err
	}
	if resp.AnnualROI == nil {
		return 0, eris.New("ml_bridge: response missing annual_roi")
	}
	return *resp.AnnualROI, nil
}

// AssignCluster asks the remote model for a cluster id.
func (b *MLBridge) AssignCluster(ctx context.Context, features domain.FeatureVector) (int, error) {
	var resp clusterResponse
	if err := b.post(ctx, "/predict/cluster", features, &resp); err != nil {
		return 0, err
	}
	if resp.ClusterID == nil {
		return 0, eris.New("ml_bridge: response missing cluster_id")
	}
	return *resp.ClusterID, nil
}

func (b *MLBridge) post(ctx context.Context, path string, features domain.FeatureVector, out any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "ml_bridge: rate limit wait")
	}

	// Prepare request body
	body, err := json.Marshal(featurePayload{
		Features:     features.Named(),
		FeatureOrder: domain.FeatureOrder(),
	})
	if err != nil {
		return eris.Wrap(err, "ml_bridge: failed to marshal request")
	}

	// Create HTTP request
	url := b.serviceURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "ml_bridge: failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// Execute request
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return eris.Wrapf(err, "ml_bridge: request to %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("ml_bridge: %s returned status %d", path, resp.StatusCode)
	}

	// Parse response
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "ml_bridge: failed to decode response")
	}
	return nil
}

// Health checks ML service connectivity
func (b *MLBridge) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "ml_bridge: failed to create health request")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "ml_bridge: health check failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("ml_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}

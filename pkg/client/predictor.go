// Package client provides an HTTP client for the storecast prediction API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/HatiCode/storecast/pkg/api"
	"github.com/HatiCode/storecast/pkg/httpx"
)

// PredictorClient calls the JSON prediction API.
// It is safe for concurrent use by multiple goroutines.
type PredictorClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPredictorClient creates a client for the service at baseURL
// (e.g. "http://localhost:8080") with a 5 second request timeout.
func NewPredictorClient(baseURL string) *PredictorClient {
	return NewPredictorClientWithTimeout(baseURL, 5*time.Second)
}

// NewPredictorClientWithTimeout creates a client with a custom timeout.
func NewPredictorClientWithTimeout(baseURL string, timeout time.Duration) *PredictorClient {
	return &PredictorClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is returned when the service answers with a non-200 status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Predict posts req to /api/v1/predict.
func (c *PredictorClient) Predict(ctx context.Context, req api.PredictRequest) (*api.PredictionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp api.PredictionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/predict", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models fetches the loaded model artifacts and bucket thresholds.
func (c *PredictorClient) Models(ctx context.Context) (*api.ModelsResponse, error) {
	var resp api.ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/models", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *PredictorClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e httpx.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

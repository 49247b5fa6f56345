package regressor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an external model server that hosts regressors which
// cannot be exported as JSON.
type Client struct {
	httpClient *http.Client
}

// ScoreRequest is the body sent to a scoring endpoint.
type ScoreRequest struct {
	Model    string    `json:"model"`
	Trait    string    `json:"trait"`
	Features []float64 `json:"features"`
}

// ScoreResponse is the body returned by a scoring endpoint.
type ScoreResponse struct {
	Prediction float64 `json:"prediction"`
}

// NewClient creates a scoring client. A zero timeout means 30 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Score posts the feature vector to endpoint and returns the prediction.
func (c *Client) Score(ctx context.Context, endpoint string, reqBody ScoreRequest) (*ScoreResponse, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scoring service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Remote is a regressor evaluated by an external model server.
type Remote struct {
	client   *Client
	endpoint string
	model    string
	trait    string
}

func (r *Remote) Predict(ctx context.Context, features []float64) (float64, error) {
	resp, err := r.client.Score(ctx, r.endpoint, ScoreRequest{
		Model:    r.model,
		Trait:    r.trait,
		Features: features,
	})
	if err != nil {
		return 0, err
	}
	return resp.Prediction, nil
}

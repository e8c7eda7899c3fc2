// Package ml provides the client for the place-probability model service.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/logger"
)

// Client is the HTTP client for the place-probability model service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.MLLogger
}

// NewClient creates a model service client with retry support.
func NewClient(cfg *config.MLServiceConfig, baseLogger *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.Logger = nil // logged through the ML logger instead

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    cfg.URL,
		log:        logger.NewMLLogger(baseLogger),
	}
}

// scoreRequest is the request payload for batch place probabilities.
type scoreRequest struct {
	RaceID   uuid.UUID   `json:"race_id"`
	HorseIDs []uuid.UUID `json:"horse_ids"`
}

// scoreResponse is the model service response. Scores are keyed by horse ID;
// horses the model has no data for are simply absent.
type scoreResponse struct {
	ModelVersion string                `json:"model_version"`
	Scores       map[uuid.UUID]float64 `json:"scores"`
}

// Health checks whether the model service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// PlaceProbabilities fetches place probabilities in [0,1] per horse.
func (c *Client) PlaceProbabilities(ctx context.Context, raceID uuid.UUID, horseIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	start := time.Now()

	payload, err := json.Marshal(scoreRequest{RaceID: raceID, HorseIDs: horseIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/scores/place", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		ScoreErrorsTotal.WithLabelValues("network").Inc()
		c.log.LogScoreError(raceID.String(), err.Error())
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		ScoreErrorsTotal.WithLabelValues("http_error").Inc()
		c.log.LogScoreError(raceID.String(), fmt.Sprintf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("score request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var scoreResp scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scoreResp); err != nil {
		ScoreErrorsTotal.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	for id, score := range scoreResp.Scores {
		if score < 0 || score > 1 {
			ScoreErrorsTotal.WithLabelValues("range").Inc()
			return nil, fmt.Errorf("horse %s score %v: %w", id, score, ErrScoreOutOfRange)
		}
	}

	ScoreRequestsTotal.WithLabelValues("false").Inc()
	ScoreLatency.Observe(time.Since(start).Seconds())
	c.log.LogScoreRequest(raceID.String(), len(scoreResp.Scores), false, float64(time.Since(start).Milliseconds()))

	return scoreResp.Scores, nil
}

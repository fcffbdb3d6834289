package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 4 << 20

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL of the backend (default: http://localhost:8000)
	BaseURL string

	// Timeout for POST /analyze (default: 60s). Expiry is a ConnectionError.
	Timeout time.Duration

	// ProbeTimeout for GET / (default: 5s)
	ProbeTimeout time.Duration

	// UseMock is forwarded as the use_mock flag of every request.
	UseMock bool
}

func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://localhost:8000",
		Timeout:      60 * time.Second,
		ProbeTimeout: 5 * time.Second,
	}
}

// Client talks to the analysis backend over its HTTP contract.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = defaults.ProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		// Deadlines come from per-call contexts.
		httpClient: &http.Client{},
		logger:     logger.Named("analyzer"),
	}
}

func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Probe issues GET / and treats any 2xx as healthy.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ConnectionError{Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("probe failed", zap.Error(err))
		return connectionFailure(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("probe unhealthy", zap.Int("status", resp.StatusCode))
		return &ConnectionError{Message: "backend unhealthy: " + resp.Status}
	}
	return nil
}

// Analyze validates req and posts it to /analyze.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	req.UseMock = req.UseMock || c.config.UseMock

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, &ConnectionError{Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("analyze transport failure",
			zap.String("action", string(req.Action)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, connectionFailure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, connectionFailure(err)
	}

	c.logger.Debug("analyze answered",
		zap.String("action", string(req.Action)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(data, resp.StatusCode),
		}
	}

	var result AnalysisResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    "invalid response from backend: " + err.Error(),
		}
	}
	if !result.Success {
		msg := result.Response
		if msg == "" {
			msg = "backend reported an unsuccessful analysis"
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &result, nil
}

// errorDetail pulls the user facing message out of a non-2xx body. detail
// is usually a string; structured details are passed through as JSON.
func errorDetail(body []byte, status int) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return statusMessage(status)
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		if strings.TrimSpace(detail) == "" {
			return statusMessage(status)
		}
		return detail
	}
	return string(payload.Detail)
}

func connectionFailure(err error) *ConnectionError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ConnectionError{Message: "request timed out", Cause: err}
	}
	return &ConnectionError{
		Message: "cannot connect to backend, make sure the backend server is running",
		Cause:   err,
	}
}

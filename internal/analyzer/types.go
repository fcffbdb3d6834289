package analyzer

import (
	"context"
	"strings"

	"github.com/Rorical/CodeAssist/internal/models"
)

// AnalysisRequest is the POST /analyze body.
type AnalysisRequest struct {
	Code     string        `json:"code"`
	Language string        `json:"language"`
	Action   models.Action `json:"action"`

	// UseMock asks the reference backend for canned replies.
	UseMock bool `json:"use_mock,omitempty"`
}

// AnalysisResponse is the 2xx reply of POST /analyze.
type AnalysisResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Action   string `json:"action"`
	Language string `json:"language"`
}

// Dispatcher sends analysis requests and probes backend liveness.
type Dispatcher interface {
	// Analyze validates req and sends it. It blocks until the backend
	// answers, the transport fails or the request times out.
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error)

	// Probe returns nil when the backend is reachable and healthy, a
	// *ConnectionError otherwise.
	Probe(ctx context.Context) error
}

// NewRequest builds a request for the current editor buffer.
func NewRequest(action models.Action, code, language string) AnalysisRequest {
	return AnalysisRequest{Code: code, Language: language, Action: action}
}

// Validate rejects requests that must never reach the network.
func Validate(req AnalysisRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return ErrEmptyCode
	}
	if req.Code == models.PlaceholderCode {
		return ErrPlaceholderCode
	}
	if !req.Action.Valid() {
		return &ValidationError{Reason: "Invalid action: " + string(req.Action)}
	}
	return nil
}

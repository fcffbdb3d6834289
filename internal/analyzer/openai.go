package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures the direct chat-completions transport.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // empty means the public OpenAI endpoint
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

// OpenAIClient implements Dispatcher against an OpenAI-compatible API,
// building the analysis prompt locally.
type OpenAIClient struct {
	client *openai.Client
	config OpenAIConfig
	logger *zap.Logger
}

func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai backend requires an api key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaults.ProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.Named("analyzer.openai"),
	}, nil
}

// Probe lists models; any failure, including an API error, means the
// endpoint is not usable.
func (c *OpenAIClient) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	if _, err := c.client.ListModels(ctx); err != nil {
		c.logger.Debug("probe failed", zap.Error(err))
		if status, ok := apiStatus(err); ok {
			return &ConnectionError{Message: "backend unhealthy: " + statusMessage(status), Cause: err}
		}
		return connectionFailure(err)
	}
	return nil
}

func (c *OpenAIClient) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn("chat completion failed", zap.String("action", string(req.Action)), zap.Error(err))
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &BackendError{StatusCode: 200, Message: "backend returned no choices"}
	}

	return &AnalysisResponse{
		Success:  true,
		Response: resp.Choices[0].Message.Content,
		Action:   string(req.Action),
		Language: req.Language,
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = statusMessage(apiErr.HTTPStatusCode)
		}
		return &BackendError{StatusCode: apiErr.HTTPStatusCode, Message: msg}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &BackendError{StatusCode: reqErr.HTTPStatusCode, Message: statusMessage(reqErr.HTTPStatusCode)}
	}
	return connectionFailure(err)
}

func apiStatus(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/httpclient"
	"github.com/tribehive/ai-orchestrator/internal/retry"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

const providerName = "openrouter"

type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// Client talks to an OpenRouter-style model provider.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
	metrics ports.Metrics
	policy  retry.Policy
}

func New(cfg Config, policy retry.Policy, logger *zap.Logger, metrics ports.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	if policy.Retryable == nil {
		policy.Retryable = httpclient.Retryable
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
		policy:  policy,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	ctx = httpclient.WithCorrelationID(ctx, httpclient.CorrelationID(ctx))
	correlation := httpclient.CorrelationID(ctx)

	op := func() error {
		return httpclient.SendJSON(ctx, c.http, method, c.url(path), c.headers(), body, out)
	}

	err := c.policy.Do(ctx, op, func(attemptErr error, delay time.Duration) {
		c.metrics.ClientRetry(providerName)
		c.logger.Warn("retrying provider call",
			zap.String("path", path),
			zap.String("correlation_id", correlation),
			zap.Duration("delay", delay),
			zap.Error(attemptErr),
		)
	})
	if err != nil {
		return c.classify(path, correlation, err)
	}
	return nil
}

func (c *Client) classify(path, correlation string, err error) error {
	class := httpclient.Classify(err)
	c.metrics.ClientError(providerName, string(class))
	c.logger.Error("provider call failed",
		zap.String("path", path),
		zap.String("correlation_id", correlation),
		zap.String("classification", string(class)),
		zap.Error(err),
	)

	msg := fmt.Sprintf("provider %s failed", path)
	switch class {
	case httpclient.ClassAuthentication:
		return domain.AuthenticationError(msg, err)
	case httpclient.ClassRateLimit:
		return domain.RateLimitError(msg, err)
	case httpclient.ClassValidation:
		return domain.BadRequestError(fmt.Sprintf("%s: %v", msg, err))
	case httpclient.ClassTimeout, httpclient.ClassServer:
		return domain.ServiceUnavailableError(msg, err)
	default:
		return domain.InternalError(msg, err)
	}
}

func (c *Client) Completion(ctx context.Context, req *schema.CompletionRequest) (*schema.CompletionResponse, error) {
	var resp schema.CompletionResponse
	if err := c.call(ctx, http.MethodPost, "/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError("provider completion returned no choices", nil)
	}
	return &resp, nil
}

func (c *Client) ChatCompletion(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	var resp schema.ChatResponse
	if err := c.call(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError("provider chat completion returned no choices", nil)
	}
	return &resp, nil
}

func (c *Client) Embeddings(ctx context.Context, req *schema.EmbeddingRequest) (*schema.EmbeddingResponse, error) {
	var resp schema.EmbeddingResponse
	if err := c.call(ctx, http.MethodPost, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError("provider embeddings returned no data", nil)
	}
	return &resp, nil
}

func (c *Client) Models(ctx context.Context) ([]schema.ProviderModel, error) {
	var list schema.ModelList
	if err := c.call(ctx, http.MethodGet, "/models", nil, &list); err != nil {
		return nil, err
	}
	if list.Data == nil {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError("provider model list is missing data", nil)
	}
	return list.Data, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()
	return httpclient.SendJSON(ctx, c.http, http.MethodGet, c.url("/health"), c.headers(), nil, nil)
}

var _ ports.ProviderClient = (*Client)(nil)

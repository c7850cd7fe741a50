package aiengine

import (
	"context"
	"encoding/json"
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

const providerName = "ai-engine"

// Config carries the transport settings for the internal AI Engine.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// Client talks to the internal AI Engine REST endpoint. Calls are retried
// per the injected policy; terminal failures are classified and mapped to
// the domain error taxonomy.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
	metrics ports.Metrics
	policy  retry.Policy
}

func New(cfg Config, policy retry.Policy, logger *zap.Logger, metrics ports.Metrics) *Client {
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
	h := map[string]string{}
	if c.cfg.APIKey != "" {
		h["Authorization"] = "Bearer " + c.cfg.APIKey
	}
	return h
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// call runs one endpoint under the retry policy and verifies the response
// carries the required top-level field. A response missing that field is a
// server error, never an empty success.
func (c *Client) call(ctx context.Context, path string, body any, requiredField string) (*schema.EngineResult, error) {
	ctx = httpclient.WithCorrelationID(ctx, httpclient.CorrelationID(ctx))
	correlation := httpclient.CorrelationID(ctx)

	var payload json.RawMessage
	op := func() error {
		payload = nil
		return httpclient.SendJSON(ctx, c.http, http.MethodPost, c.url(path), c.headers(), body, &payload)
	}

	start := time.Now()
	err := c.policy.Do(ctx, op, func(attemptErr error, delay time.Duration) {
		c.metrics.ClientRetry(providerName)
		c.logger.Warn("retrying ai-engine call",
			zap.String("path", path),
			zap.String("correlation_id", correlation),
			zap.Duration("delay", delay),
			zap.Error(attemptErr),
		)
	})
	if err != nil {
		return nil, c.classify(path, correlation, err)
	}

	c.logger.Debug("ai-engine call complete",
		zap.String("path", path),
		zap.String("correlation_id", correlation),
		zap.Duration("latency", time.Since(start)),
	)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError(
			fmt.Sprintf("ai-engine returned a non-object payload for %s", path), err)
	}
	if _, ok := fields[requiredField]; !ok {
		c.metrics.ClientError(providerName, string(httpclient.ClassServer))
		return nil, domain.ServiceUnavailableError(
			fmt.Sprintf("ai-engine response for %s is missing %q", path, requiredField), nil)
	}

	return &schema.EngineResult{Payload: payload}, nil
}

func (c *Client) classify(path, correlation string, err error) error {
	class := httpclient.Classify(err)
	c.metrics.ClientError(providerName, string(class))
	c.logger.Error("ai-engine call failed",
		zap.String("path", path),
		zap.String("correlation_id", correlation),
		zap.String("classification", string(class)),
		zap.Error(err),
	)

	msg := fmt.Sprintf("ai-engine %s failed", path)
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

func (c *Client) Matching(ctx context.Context, req *schema.MatchingRequest) (*schema.EngineResult, error) {
	field := "matches"
	switch req.MatchingType {
	case "tribe_formation":
		field = "tribes"
	case "compatibility":
		field = "compatibility"
	}
	return c.call(ctx, "/matching", req, field)
}

func (c *Client) Personality(ctx context.Context, req *schema.PersonalityRequest) (*schema.EngineResult, error) {
	return c.call(ctx, "/personality", req, "traits")
}

func (c *Client) Engagement(ctx context.Context, req *schema.EngagementRequest) (*schema.EngineResult, error) {
	field := "prompts"
	switch req.EngagementType {
	case "challenges":
		field = "challenge"
	case "activities":
		field = "activities"
	}
	return c.call(ctx, "/engagement", req, field)
}

func (c *Client) Recommendations(ctx context.Context, req *schema.RecommendationRequest) (*schema.EngineResult, error) {
	return c.call(ctx, "/recommendations", req, "recommendations")
}

// Health probes the engine with a shorter timeout than regular calls.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()
	return httpclient.SendJSON(ctx, c.http, http.MethodGet, c.url("/health"), c.headers(), nil, nil)
}

var _ ports.EngineClient = (*Client)(nil)

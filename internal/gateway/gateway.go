// Package gateway wraps the hosted AI gateway behind a small chat-completion
// interface. All model calls in the service go through here so that rate
// limiting, error mapping and metrics live in one place.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/branddesk/branddesk-backend/internal/config"
	"github.com/branddesk/branddesk-backend/internal/metrics"
)

var (
	// ErrRateLimited maps the gateway's 429 responses.
	ErrRateLimited = errors.New("gateway: rate limited")
	// ErrPaymentRequired maps the gateway's 402 responses.
	ErrPaymentRequired = errors.New("gateway: credits exhausted")
	// ErrEmptyResponse is returned when the model answers with no content.
	ErrEmptyResponse = errors.New("gateway: empty completion")
)

// ChatRequest is a single-turn completion request.
type ChatRequest struct {
	Model  string
	System string
	User   string
	// JSONObject asks the model for a JSON object response.
	JSONObject bool
}

// ChatCompleter is implemented by the live client and by test fakes.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type Client struct {
	api     openai.Client
	cfg     config.GatewayConfig
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func NewClient(cfg config.GatewayConfig, m *metrics.Metrics, logger *zap.SugaredLogger) *Client {
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &Client{
		api:     api,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateRPM)), cfg.RateRPM),
		metrics: m,
		logger:  logger,
	}
}

// FastModel returns the default model for routine completions.
func (c *Client) FastModel() string { return c.cfg.FastModel }

// ProModel returns the heavier model used for grounded or oversized requests.
func (c *Client) ProModel() string { return c.cfg.ProModel }

func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gateway limiter: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if req.JSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)

	if err != nil {
		mapped := mapError(err)
		c.record(ctx, req.Model, outcome(mapped), elapsed)
		c.logger.Warnw("Gateway completion failed", "model", req.Model, "error", err)
		return "", mapped
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.record(ctx, req.Model, "empty", elapsed)
		return "", ErrEmptyResponse
	}

	c.record(ctx, req.Model, "ok", elapsed)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) record(ctx context.Context, model, outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(ctx, model, outcome, d)
	}
}

func mapError(err error) error {
	switch HTTPStatus(err) {
	case 429:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case 402:
		return fmt.Errorf("%w: %w", ErrPaymentRequired, err)
	default:
		return fmt.Errorf("gateway: %w", err)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPaymentRequired):
		return "payment_required"
	default:
		return "error"
	}
}

// HTTPStatus extracts the upstream HTTP status from a gateway error, or 0
// when the error did not come from an HTTP response.
func HTTPStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

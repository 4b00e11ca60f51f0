// Package openai talks to OpenAI-compatible chat completion endpoints.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	commonhttp "semantics-workers/internal/common/http"
	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/common/metrics"
	"semantics-workers/internal/llm"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModelName = "gpt-4o-mini"
	defaultTimeout   = 60 * time.Second
	baseBackoff      = 100 * time.Millisecond
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// Provider owns the HTTP client and request defaults shared by every generator it
// hands out.
type Provider struct {
	config Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewProvider(cfg Config, log logger.Logger) (*Provider, error) {
	return NewProviderWithClient(cfg, nil, log)
}

// NewProviderWithClient uses client instead of building one from cfg.Timeout.
func NewProviderWithClient(cfg Config, client *commonhttp.Client, log logger.Logger) (*Provider, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" && strings.HasPrefix(cfg.BaseURL, defaultBaseURL) {
		return nil, errors.New("openai: api key is required for api.openai.com")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModelName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if client == nil {
		client = commonhttp.NewClient(cfg.Timeout)
	}

	return &Provider{
		config: cfg,
		client: client,
		logger: log.With(map[string]interface{}{"provider": "openai", "model": cfg.Model}),
	}, nil
}

func (p *Provider) ModelName() string {
	return p.config.Model
}

// GetGenerator returns a generator that always sends systemPrompt as the system message.
func (p *Provider) GetGenerator(systemPrompt string) llm.Generator {
	return &generator{provider: p, systemPrompt: systemPrompt}
}

type generator struct {
	provider     *Provider
	systemPrompt string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage map[string]interface{} `json:"usage"`
}

// Run sends one chat completion. Transport errors, 429 and 5xx responses are retried
// up to MaxRetries times with exponential backoff; other 4xx responses fail at once.
func (g *generator) Run(ctx context.Context, prompt string) (*llm.Reply, error) {
	p := g.provider
	body := chatRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}
	if g.systemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: g.systemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: prompt})

	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}
	endpoint := p.config.BaseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * baseBackoff
			p.logger.Warn("retrying generation request", map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
				"error":   lastErr.Error(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", llm.ErrLLMTimeout, ctx.Err())
			}
		}

		reply, retryable, err := g.do(ctx, endpoint, headers, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", llm.ErrLLMTimeout, ctx.Err())
		}
		if !retryable {
			break
		}
	}

	if isTimeout(lastErr) {
		return nil, fmt.Errorf("%w: %v", llm.ErrLLMTimeout, lastErr)
	}
	return nil, fmt.Errorf("%w: %v", llm.ErrLLMGenerationFailed, lastErr)
}

// isTimeout reports a per-request client timeout, which fires before the job deadline.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (g *generator) do(ctx context.Context, endpoint string, headers map[string]string, body chatRequest) (*llm.Reply, bool, error) {
	p := g.provider
	start := time.Now()

	req, err := commonhttp.NewJSONRequest(ctx, endpoint, body, headers)
	if err != nil {
		return nil, false, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(p.config.Model, "error").Observe(time.Since(start).Seconds())
		return nil, true, fmt.Errorf("request chat completion: %w", err)
	}
	defer resp.Body.Close()

	metrics.LLMRequestDuration.WithLabelValues(p.config.Model, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return nil, retryable, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("decode chat completion: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, false, errors.New("chat completion returned no choices")
	}

	reply := &llm.Reply{
		Replies: make([]string, 0, len(decoded.Choices)),
		Meta:    make([]map[string]interface{}, 0, len(decoded.Choices)),
	}
	for _, choice := range decoded.Choices {
		reply.Replies = append(reply.Replies, choice.Message.Content)
		reply.Meta = append(reply.Meta, map[string]interface{}{
			"model":         decoded.Model,
			"index":         choice.Index,
			"finish_reason": choice.FinishReason,
			"usage":         decoded.Usage,
		})
	}

	p.logger.Debug("generation completed", map[string]interface{}{
		"choices":    len(decoded.Choices),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return reply, false, nil
}

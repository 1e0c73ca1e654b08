// Package llm provides the Claude messages-API client used by the generator,
// the shrink service, and the multimodal vision provider. The model is
// treated as a black box returning a single text string. Outbound calls go
// through a shared token-bucket limiter and retry with jittered exponential
// back-off before surfacing ErrProviderUnavailable.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/propwrite/propwrite/internal/core"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	// Retry policy: 3 attempts, 2–30 s jittered exponential wait.
	maxRetries      = 2 // retries after the first attempt
	initialInterval = 2 * time.Second
	maxInterval     = 30 * time.Second
)

// Client talks to a Claude-compatible messages endpoint. The zero value is
// not usable; construct with New. One long-lived Client is shared by all
// components.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRatePerMinute sizes the shared token bucket gating outbound calls.
func WithRatePerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), n)
		}
	}
}

// New creates a Client. An empty apiKey yields an unconfigured client;
// Configured reports this so callers can fall back to mock paths.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(50.0/60.0), 50),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ImageBlock is an inline base-64 image attached to a prompt.
type ImageBlock struct {
	MediaType string // e.g. "image/jpeg"
	Data      string // base-64 bytes
}

// Request is one messages-API call: a single user turn of text, optionally
// preceded by an inline image block.
type Request struct {
	Model       string
	MaxTokens   int
	Temperature float64
	System      string
	Prompt      string
	Image       *ImageBlock
}

type apiContentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *apiImageSource `json:"source,omitempty"`
}

type apiImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature,omitempty"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the request and returns the model's text. Transport errors
// and 429/5xx responses are retried; exhaustion surfaces as
// core.ErrProviderUnavailable.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: no API key configured", core.ErrProviderUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}

	var text string
	op := func() error {
		var err error
		text, err = c.call(ctx, req)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	return text, nil
}

// call performs one HTTP round trip. Retryable failures return plain
// errors; permanent ones are wrapped with backoff.Permanent.
func (c *Client) call(ctx context.Context, req Request) (string, error) {
	var blocks []apiContentBlock
	if req.Image != nil {
		blocks = append(blocks, apiContentBlock{
			Type: "image",
			Source: &apiImageSource{
				Type:      "base64",
				MediaType: req.Image.MediaType,
				Data:      req.Image.Data,
			},
		})
	}
	blocks = append(blocks, apiContentBlock{Type: "text", Text: req.Prompt})

	body, err := json.Marshal(apiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []apiMessage{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", backoff.Permanent(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		log.Printf("llm: %s returned %d, retrying", req.Model, resp.StatusCode)
		return "", fmt.Errorf("llm: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var parsed apiResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil {
			return "", backoff.Permanent(fmt.Errorf("llm: %s: %s", parsed.Error.Type, parsed.Error.Message))
		}
		return "", backoff.Permanent(fmt.Errorf("llm: status %d", resp.StatusCode))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("llm: decoding response: %w", err))
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", backoff.Permanent(fmt.Errorf("llm: response contained no text block"))
}

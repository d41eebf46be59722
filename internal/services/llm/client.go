package llm

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
)

const (
	// DefaultEndpoint is the OpenAI chat completions URL used when no
	// base_url is configured.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultTimeout  = 5 * time.Minute
)

// Config describes an OpenAI-compatible chat completions endpoint.
type Config struct {
	APIKey string
	// BaseURL is the full completions endpoint, not the API root.
	BaseURL     string
	Model       string
	Temperature float64
	// Title is sent as X-Title for routers that attribute traffic per app.
	Title          string
	TimeoutSeconds int
}

// Client sends one-shot chat completion requests. Failures are returned to
// the caller untouched; there is no retry loop.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	title       string
	temperature float64
	http        *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient constructs a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		endpoint:    strings.TrimSpace(cfg.BaseURL),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       strings.TrimSpace(cfg.Model),
		title:       strings.TrimSpace(cfg.Title),
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: timeout},
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the configured model name.
func (c *Client) Model() string { return c.model }

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, summarizePayloadSnippet(e.Body))
}

// ErrEmptyContent reports a response that carried no usable text.
var ErrEmptyContent = errors.New("empty completion content")

// Complete sends req as a system and a user message.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	const op = "llm complete"
	if err := req.validate(op); err != nil {
		return nil, err
	}
	body := chatRequest{
		Model:       c.model,
		Messages:    req.messages(),
		Temperature: c.temperature,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	completion, err := c.post(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return completion, nil
}

// EstimateTokens returns a local prompt size estimate; the chat completions
// API has no counting endpoint.
func (c *Client) EstimateTokens(_ context.Context, req Request) (int, error) {
	return EstimateRequestTokens(req), nil
}

// HealthCheck asks the model for a fixed JSON reply to prove the key, the
// endpoint, and the model name are all usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	completion, err := c.Complete(ctx, Request{
		System: "You must respond with JSON only.",
		User:   `Respond with {"ok":true}`,
		JSON:   true,
	})
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(completion.Content, &reply); err != nil {
		return fmt.Errorf("llm health: parse reply: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: model did not confirm")
	}
	return nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, body chatRequest) (*Completion, error) {
	if c.apiKey == "" {
		return nil, errors.New("api key required")
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send (timeout %s): %w", c.http.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	return toCompletion(parsed, body.Model, raw)
}

func toCompletion(parsed chatResponse, requestedModel string, raw []byte) (*Completion, error) {
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices (response: %s)", ErrEmptyContent, summarizePayloadSnippet(string(raw)))
	}
	choice := parsed.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: finish_reason=%q refusal=%q", ErrEmptyContent,
			choice.FinishReason, strings.TrimSpace(choice.Message.Refusal))
	}

	model := strings.TrimSpace(parsed.Model)
	if model == "" {
		model = requestedModel
	}
	usage := Usage{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return &Completion{
		Content:      content,
		Model:        model,
		FinishReason: strings.TrimSpace(choice.FinishReason),
		Usage:        usage,
	}, nil
}

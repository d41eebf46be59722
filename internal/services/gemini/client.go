package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ytanalyzer/internal/services/llm"
)

const jsonMIMEType = "application/json"

// Config captures the Gemini connection settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// modelAPI is the subset of genai.Models the client relies on.
type modelAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// Client sends prompts to Google Gemini and reports usage in llm terms so it
// can stand in for the OpenAI-compatible client.
type Client struct {
	cfg    Config
	models modelAPI
}

// NewClient dials the Gemini API with the configured key.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, models: client.Models}, nil
}

func newWithModels(cfg Config, models modelAPI) *Client {
	return &Client{cfg: cfg, models: models}
}

// Model reports the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends the request and returns the generated text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	if strings.TrimSpace(req.System) == "" || strings.TrimSpace(req.User) == "" {
		return nil, errors.New("gemini complete: system and user prompts required")
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(strings.TrimSpace(req.System), genai.RoleUser),
		Temperature:       genai.Ptr(float32(c.cfg.Temperature)),
	}
	if req.JSON {
		config.ResponseMIMEType = jsonMIMEType
	}
	contents := []*genai.Content{
		genai.NewContentFromText(strings.TrimSpace(req.User), genai.RoleUser),
	}

	result, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini complete: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini complete: empty response (finish_reason=%q)", finishReason(result))
	}

	completion := &llm.Completion{
		Content:      text,
		Model:        c.cfg.Model,
		FinishReason: finishReason(result),
	}
	if result.ModelVersion != "" {
		completion.Model = result.ModelVersion
	}
	if meta := result.UsageMetadata; meta != nil {
		completion.Usage = llm.Usage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return completion, nil
}

// EstimateTokens asks the CountTokens API for the prompt size and falls back
// to the local heuristic when the call fails.
func (c *Client) EstimateTokens(ctx context.Context, req llm.Request) (int, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(strings.TrimSpace(req.System), genai.RoleUser),
		genai.NewContentFromText(strings.TrimSpace(req.User), genai.RoleUser),
	}
	resp, err := c.models.CountTokens(ctx, c.cfg.Model, contents, nil)
	if err != nil || resp == nil || resp.TotalTokens <= 0 {
		return llm.EstimateRequestTokens(req), nil
	}
	return int(resp.TotalTokens), nil
}

// HealthCheck verifies the key and model with a tiny request.
func (c *Client) HealthCheck(ctx context.Context) error {
	completion, err := c.Complete(ctx, llm.Request{
		System: "You must respond with JSON only.",
		User:   "Respond with {\"ok\":true}",
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := llm.DecodeLLMJSON(completion.Content, &parsed); err != nil {
		return fmt.Errorf("gemini health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}

func finishReason(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	for _, candidate := range result.Candidates {
		if candidate != nil && candidate.FinishReason != "" {
			return string(candidate.FinishReason)
		}
	}
	return ""
}

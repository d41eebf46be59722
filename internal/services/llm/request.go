package llm

import (
	"errors"
	"strings"
)

// Request is a single system+user prompt exchange.
type Request struct {
	System string
	User   string
	// JSON asks the backend for a JSON object response.
	JSON bool
}

func (r Request) validate(op string) error {
	if strings.TrimSpace(r.System) == "" {
		return errors.New(op + ": system prompt required")
	}
	if strings.TrimSpace(r.User) == "" {
		return errors.New(op + ": user prompt required")
	}
	return nil
}

func (r Request) messages() []chatMessage {
	return []chatMessage{
		{Role: "system", Content: strings.TrimSpace(r.System)},
		{Role: "user", Content: strings.TrimSpace(r.User)},
	}
}

// Usage reports token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// Completion is the text returned by a backend plus its usage.
type Completion struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

const (
	charsPerToken      = 4
	messageOverhead    = 4
	completionOverhead = 3
)

// EstimateTokens approximates the token count of text at about four
// characters per token, rounding up.
func EstimateTokens(text string) int {
	runes := len([]rune(text))
	if runes == 0 {
		return 0
	}
	return (runes + charsPerToken - 1) / charsPerToken
}

// EstimateRequestTokens approximates the prompt tokens a request consumes,
// including the per-message framing chat APIs add.
func EstimateRequestTokens(req Request) int {
	total := completionOverhead
	for _, text := range []string{req.System, req.User} {
		total += messageOverhead + EstimateTokens(strings.TrimSpace(text))
	}
	return total
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func chatServer(t *testing.T, handler func(t *testing.T, body chatRequest) (int, any)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, payload := handler(t, body)
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func contentPayload(content string) map[string]any {
	return map[string]any{
		"model": "demo-model-2024",
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
	}
}

func TestCompleteReturnsContentAndUsage(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, body chatRequest) (int, any) {
		if body.Model != "demo-model" {
			t.Errorf("unexpected model %q", body.Model)
		}
		if body.Temperature != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", body.Temperature)
		}
		if body.ResponseFormat != nil {
			t.Errorf("expected no response_format for text request, got %v", body.ResponseFormat)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Role != "user" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}
		return http.StatusOK, contentPayload("# Corrected Transcript\nhello")
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Temperature: 0.7})
	completion, err := client.Complete(context.Background(), Request{System: "edit", User: "hello"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if !strings.HasPrefix(completion.Content, "# Corrected Transcript") {
		t.Fatalf("unexpected content %q", completion.Content)
	}
	if completion.Usage != (Usage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150}) {
		t.Fatalf("unexpected usage %+v", completion.Usage)
	}
	if completion.Model != "demo-model-2024" || completion.FinishReason != "stop" {
		t.Fatalf("unexpected model/finish %q/%q", completion.Model, completion.FinishReason)
	}
}

func TestCompleteJSONSetsResponseFormat(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, body chatRequest) (int, any) {
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json response format, got %v", body.ResponseFormat)
		}
		return http.StatusOK, contentPayload(`{"ok":true}`)
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	completion, err := client.Complete(context.Background(), Request{System: "system", User: "user", JSON: true})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completion.Content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", completion.Content)
	}
}

func TestCompleteDoesNotRetryOnServerError(t *testing.T) {
	server, calls := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusServiceUnavailable, map[string]string{"error": "overloaded"}
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.Complete(context.Background(), Request{System: "s", User: "u"})
	if err == nil {
		t.Fatal("expected error from 503")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}

func TestCompleteFillsMissingUsageAndModel(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusOK, map[string]any{
			"choices": []any{
				map[string]any{"finish_reason": "stop", "message": map[string]any{"content": "  done  "}},
			},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 2},
		}
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	completion, err := client.Complete(context.Background(), Request{System: "s", User: "u"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completion.Content != "done" || completion.Model != "demo" {
		t.Fatalf("unexpected completion %+v", completion)
	}
	if completion.Usage.TotalTokens != 42 {
		t.Fatalf("expected total derived from parts, got %+v", completion.Usage)
	}
}

func TestCompleteSurfacesAPIErrorBody(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusOK, map[string]any{"error": map[string]any{"message": "model not found"}}
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "missing"})
	_, err := client.Complete(context.Background(), Request{System: "s", User: "u"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestCompleteSendsTitleHeader(t *testing.T) {
	var title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		_ = json.NewEncoder(w).Encode(contentPayload("ok"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo", Title: "ytanalyzer"})
	if _, err := client.Complete(context.Background(), Request{System: "s", User: "u"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if title != "ytanalyzer" {
		t.Fatalf("expected X-Title header, got %q", title)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusOK, map[string]any{
			"choices": []any{
				map[string]any{"finish_reason": "content_filter", "message": map[string]any{"content": "", "refusal": "nope"}},
			},
		}
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.Complete(context.Background(), Request{System: "s", User: "u"})
	if err == nil {
		t.Fatal("expected empty content error")
	}
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if !strings.Contains(err.Error(), "content_filter") || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected finish reason and refusal in error, got %v", err)
	}
}

func TestCompleteValidatesInput(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:0", Model: "demo"})
	if _, err := client.Complete(context.Background(), Request{User: "u"}); err == nil {
		t.Fatal("expected error for missing system prompt")
	}
	if _, err := client.Complete(context.Background(), Request{System: "s"}); err == nil {
		t.Fatal("expected error for missing user prompt")
	}
	noKey := NewClient(Config{BaseURL: "http://127.0.0.1:0", Model: "demo"})
	if _, err := noKey.Complete(context.Background(), Request{System: "s", User: "u"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestHealthCheck(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusOK, contentPayload("```json\n{\"ok\":true}\n```")
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestHealthCheckFailure(t *testing.T) {
	server, _ := chatServer(t, func(t *testing.T, _ chatRequest) (int, any) {
		return http.StatusUnauthorized, map[string]string{"error": "unauthorized"}
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var parsed struct {
		Bias string `json:"bias"`
	}
	cases := []string{
		`{"bias":"low"}`,
		"```json\n{\"bias\":\"low\"}\n```",
		"Here you go: {\"bias\":\"low\"} hope that helps",
	}
	for _, input := range cases {
		parsed.Bias = ""
		if err := DecodeLLMJSON(input, &parsed); err != nil {
			t.Fatalf("DecodeLLMJSON(%q) returned error: %v", input, err)
		}
		if parsed.Bias != "low" {
			t.Fatalf("DecodeLLMJSON(%q) bias = %q", input, parsed.Bias)
		}
	}
	if err := DecodeLLMJSON("   ", &parsed); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if err := DecodeLLMJSON("not json at all", &parsed); err == nil || !strings.Contains(err.Error(), "snippet") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Fatalf("empty text = %d", got)
	}
	if got := EstimateTokens("abcd"); got != 1 {
		t.Fatalf("four chars = %d, want 1", got)
	}
	if got := EstimateTokens("abcde"); got != 2 {
		t.Fatalf("five chars = %d, want 2", got)
	}
	if got := EstimateTokens("héllo wörld!"); got != 3 {
		t.Fatalf("runes not bytes: got %d, want 3", got)
	}
	req := Request{System: strings.Repeat("a", 400), User: strings.Repeat("b", 800)}
	if got, want := EstimateRequestTokens(req), 100+200+2*messageOverhead+completionOverhead; got != want {
		t.Fatalf("EstimateRequestTokens = %d, want %d", got, want)
	}
}

func TestUsageAdd(t *testing.T) {
	total := Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}.Add(Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})
	if total != (Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}) {
		t.Fatalf("unexpected sum %+v", total)
	}
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/extractor"
	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/gemini"
	"ytanalyzer/internal/services/llm"
	"ytanalyzer/internal/transcript"
	"ytanalyzer/internal/transcription"
)

// ErrDeclined reports that the user refused a request over the token threshold.
var ErrDeclined = errors.New("llm request declined")

// Backend is an LLM that can size and answer a request.
type Backend interface {
	Model() string
	Complete(ctx context.Context, req llm.Request) (*llm.Completion, error)
	EstimateTokens(ctx context.Context, req llm.Request) (int, error)
}

// Estimate describes a request awaiting confirmation.
type Estimate struct {
	Operation string
	Model     string
	Tokens    int
	Threshold int
}

// Confirmer approves requests whose estimate exceeds the threshold.
type Confirmer interface {
	Confirm(ctx context.Context, estimate Estimate) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, estimate Estimate) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, estimate Estimate) (bool, error) {
	return f(ctx, estimate)
}

// Analyzer runs reconciliation and content analysis against one backend.
type Analyzer struct {
	backend   Backend
	confirmer Confirmer
	threshold int
	logger    *slog.Logger
	usage     llm.Usage
}

// New wraps backend. threshold <= 0 disables confirmation; a nil confirmer
// declines every request over the threshold.
func New(backend Backend, confirmer Confirmer, threshold int, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		backend:   backend,
		confirmer: confirmer,
		threshold: threshold,
		logger:    logging.NewComponentLogger(logger, "analysis"),
	}
}

// NewBackend builds the backend selected by llm.provider.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	if err := cfg.RequireLLMKey(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "backend", "api key missing", err)
	}
	active := cfg.ActiveLLM()
	switch active.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      active.APIKey,
			Model:       active.Model,
			Temperature: active.Temperature,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "analysis", "backend", "create gemini client", err)
		}
		return client, nil
	default:
		return llm.NewClient(llm.Config{
			APIKey:         active.APIKey,
			BaseURL:        active.BaseURL,
			Model:          active.Model,
			Temperature:    active.Temperature,
			Title:          "ytanalyzer",
			TimeoutSeconds: active.TimeoutSeconds,
		}), nil
	}
}

// Usage returns tokens consumed by every completed request so far.
func (a *Analyzer) Usage() llm.Usage {
	return a.usage
}

// CompareTranscripts reconciles the platform transcript with the optional
// local transcript. Without a usable secondary the prompt covers the primary
// alone and SecondaryUsed is false.
func (a *Analyzer) CompareTranscripts(ctx context.Context, primary []transcript.Segment, secondary *transcription.Result) (*Reconciliation, error) {
	primaryText := transcript.PlainText(primary)
	secondaryText, label := "", ""
	if !secondary.Empty() {
		secondaryText = secondary.Text()
		label = displayName(secondary.Strategy)
	}
	if primaryText == "" && secondaryText == "" {
		return nil, services.Wrap(services.ErrValidation, "analysis", "compare transcripts", "no transcript text", nil)
	}

	req := llm.Request{
		System: ReconciliationSystemPrompt,
		User:   reconciliationPrompt(primaryText, secondaryText, label),
	}
	completion, err := a.send(ctx, "compare_transcripts", req)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(completion.Content)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "analysis", "compare transcripts", "empty reconciliation", nil)
	}
	rec := &Reconciliation{
		Text:          text,
		PrimaryUsed:   primaryText != "",
		SecondaryUsed: secondaryText != "",
		Duration:      transcript.Duration(primary),
		Model:         completion.Model,
		Usage:         completion.Usage,
	}
	if rec.SecondaryUsed {
		rec.SecondarySource = secondary.Strategy
		rec.Duration = max(rec.Duration, transcript.Duration(secondary.Segments))
	}
	return rec, nil
}

// AnalyzeContent asks for the structured analysis of a video.
func (a *Analyzer) AnalyzeContent(ctx context.Context, meta *extractor.Metadata, transcriptText, viewerProfile string) (*Result, error) {
	if meta == nil {
		return nil, services.Wrap(services.ErrValidation, "analysis", "analyze content", "metadata required", nil)
	}
	if strings.TrimSpace(transcriptText) == "" {
		return nil, services.Wrap(services.ErrValidation, "analysis", "analyze content", "transcript required", nil)
	}
	viewerProfile = strings.TrimSpace(viewerProfile)
	if viewerProfile == "" {
		return nil, services.Wrap(services.ErrValidation, "analysis", "analyze content", "viewer profile required", nil)
	}

	req := llm.Request{
		System: analysisSystemPrompt(viewerProfile),
		User:   analysisUserPrompt(meta, transcriptText),
		JSON:   true,
	}
	completion, err := a.send(ctx, "analyze_content", req)
	if err != nil {
		return nil, err
	}
	result, err := ParseResult(completion.Content)
	if err != nil {
		logging.ErrorWithContext(a.logger, "analysis response malformed", "analysis_parse_failed",
			logging.Error(err),
			logging.String("payload", llm.SummarizePayload(completion.Content)),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		)
		return nil, err
	}
	result.Model = completion.Model
	result.Usage = completion.Usage
	return result, nil
}

// send sizes the request, asks for confirmation over the threshold, and
// performs exactly one call.
func (a *Analyzer) send(ctx context.Context, op string, req llm.Request) (*llm.Completion, error) {
	tokens, err := a.backend.EstimateTokens(ctx, req)
	if err != nil {
		tokens = llm.EstimateRequestTokens(req)
	}
	a.logger.Info("llm request sized",
		logging.String("operation", op),
		logging.String("model", a.backend.Model()),
		logging.Int("estimated_tokens", tokens),
	)

	if a.threshold > 0 && tokens > a.threshold {
		approved := false
		if a.confirmer != nil {
			approved, err = a.confirmer.Confirm(ctx, Estimate{
				Operation: op,
				Model:     a.backend.Model(),
				Tokens:    tokens,
				Threshold: a.threshold,
			})
			if err != nil {
				return nil, fmt.Errorf("%s: confirm token estimate: %w", op, err)
			}
		}
		if !approved {
			a.logger.Info("llm request declined",
				logging.String("operation", op),
				logging.Int("estimated_tokens", tokens),
				logging.Int("threshold", a.threshold),
			)
			return nil, fmt.Errorf("%s: %w (estimated %d tokens > %d)", op, ErrDeclined, tokens, a.threshold)
		}
	}

	completion, err := a.backend.Complete(ctx, req)
	if err != nil {
		logging.ErrorWithContext(a.logger, "llm request failed", "llm_request_failed",
			logging.String("operation", op),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.usage = a.usage.Add(completion.Usage)
	a.logger.Info("llm request complete",
		logging.String("operation", op),
		logging.String("model", completion.Model),
		logging.Int("prompt_tokens", completion.Usage.PromptTokens),
		logging.Int("completion_tokens", completion.Usage.CompletionTokens),
		logging.Int("total_tokens", completion.Usage.TotalTokens),
	)
	return completion, nil
}

func displayName(strategy string) string {
	switch strategy {
	case "whisperx":
		return "WhisperX"
	default:
		return "Whisper"
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytanalyzer/internal/analysis"
	"ytanalyzer/internal/config"
	"ytanalyzer/internal/extractor"
	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/progress"
	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/llm"
	"ytanalyzer/internal/stageexec"
	"ytanalyzer/internal/staging"
	"ytanalyzer/internal/store"
	"ytanalyzer/internal/transcript"
	"ytanalyzer/internal/transcription"
)

// ErrNoTranscript is returned when neither the platform captions nor the
// local transcription produced any text.
var ErrNoTranscript = errors.New("no transcript available")

// Source fetches what the platform knows about a video.
type Source interface {
	VideoID(ctx context.Context, url string) (string, error)
	Metadata(ctx context.Context, url string) (*extractor.Metadata, error)
	PlatformTranscript(ctx context.Context, url string) ([]transcript.Segment, error)
}

// LocalTranscriber produces a transcript from the video's audio. A nil
// result with a nil error means the pass was cancelled.
type LocalTranscriber interface {
	Transcribe(ctx context.Context, url string) (*transcription.Result, error)
}

// ContentAnalyzer reconciles transcripts and analyses the video.
type ContentAnalyzer interface {
	CompareTranscripts(ctx context.Context, primary []transcript.Segment, secondary *transcription.Result) (*analysis.Reconciliation, error)
	AnalyzeContent(ctx context.Context, meta *extractor.Metadata, transcriptText, viewerProfile string) (*analysis.Result, error)
	Usage() llm.Usage
}

// TranscriberFactory builds the local transcriber on first use.
type TranscriberFactory func(cfg *config.Config, logger *slog.Logger, bars *progress.Factory) (LocalTranscriber, error)

// Request describes one run.
type Request struct {
	URL           string
	ViewerProfile string
	UseWhisper    bool
}

// Outcome summarises a finished run.
type Outcome struct {
	VideoID             string
	Title               string
	Skipped             bool
	TranscriptPath      string
	AnalysisPath        string
	InfoQualityScore    int
	ViewerInterestScore int
	SecondaryUsed       bool
	Usage               llm.Usage
	Elapsed             time.Duration
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSource replaces the extractor.
func WithSource(s Source) Option {
	return func(p *Pipeline) { p.source = s }
}

// WithTranscriberFactory replaces how the local transcriber is built.
func WithTranscriberFactory(f TranscriberFactory) Option {
	return func(p *Pipeline) { p.newTranscriber = f }
}

// WithAnalyzer replaces the LLM analyzer.
func WithAnalyzer(a ContentAnalyzer) Option {
	return func(p *Pipeline) { p.analyzer = a }
}

// WithConfirmer sets who approves requests over the token threshold.
func WithConfirmer(c analysis.Confirmer) Option {
	return func(p *Pipeline) { p.confirmer = c }
}

// WithProgress sets the progress bar factory.
func WithProgress(f *progress.Factory) Option {
	return func(p *Pipeline) { p.bars = f }
}

// WithStore uses an already opened store. Close still closes it.
func WithStore(s *store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// Pipeline owns the collaborators for processing videos.
type Pipeline struct {
	cfg            *config.Config
	base           *slog.Logger
	logger         *slog.Logger
	source         Source
	store          *store.Store
	analyzer       ContentAnalyzer
	confirmer      analysis.Confirmer
	newTranscriber TranscriberFactory
	transcriber    LocalTranscriber
	bars           *progress.Factory
}

// New wires a pipeline from configuration. The store is opened immediately
// and stale scratch directories are swept; the LLM backend and the local
// transcriber are built on first use.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	p := &Pipeline{
		cfg:            cfg,
		base:           logger,
		logger:         logging.NewComponentLogger(logger, "pipeline"),
		newTranscriber: defaultTranscriber,
		bars:           progress.Disabled(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		src, err := extractor.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		p.source = src
	}
	if p.store == nil {
		s, err := store.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		p.store = s
	}
	staging.CleanStale(ctx, cfg.Paths.TempAudioDir, staging.DefaultMaxAge, p.logger)
	return p, nil
}

func defaultTranscriber(cfg *config.Config, logger *slog.Logger, bars *progress.Factory) (LocalTranscriber, error) {
	return transcription.New(cfg, logger, transcription.WithProgress(bars))
}

// Store exposes the underlying video store.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Close releases the store.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	return p.store.Close()
}

// run carries the intermediate results between stages.
type run struct {
	req      Request
	id       string
	meta     *extractor.Metadata
	platform []transcript.Segment
	local    *transcription.Result
	rec      *analysis.Reconciliation
	result   *analysis.Result
	outcome  *Outcome
}

// Run processes one video. An id already in the store returns
// Outcome{Skipped: true} without any extraction or LLM calls.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	started := time.Now()
	req.URL = strings.TrimSpace(req.URL)
	req.ViewerProfile = strings.TrimSpace(req.ViewerProfile)
	if req.ViewerProfile == "" {
		req.ViewerProfile = p.cfg.Analysis.DefaultViewerProfile
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	id, err := p.source.VideoID(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	ctx = services.WithVideoID(ctx, id)
	logger := logging.WithContext(ctx, p.logger)

	exists, err := p.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info("video already processed; skipping",
			logging.String(logging.FieldEventType, "video_skipped"),
			logging.String("database", p.store.Path()),
		)
		return &Outcome{VideoID: id, Skipped: true, Elapsed: time.Since(started)}, nil
	}

	logger.Info("processing video",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("url", req.URL),
		logging.Bool("use_whisper", req.UseWhisper),
		logging.String("viewer_profile", req.ViewerProfile),
	)

	r := &run{req: req, id: id, outcome: &Outcome{VideoID: id}}
	stages := []struct {
		name string
		step stageexec.Step
	}{
		{"metadata", r.metadata(p)},
		{"transcripts", r.transcripts(p)},
		{"analysis", r.analyze(p)},
		{"save", r.save(p)},
	}

	bar := p.bars.Steps(len(stages), "Processing")
	defer bar.Finish()
	for i, stage := range stages {
		if err := stageexec.Run(ctx, stageexec.Options{
			Logger: p.logger,
			Bar:    bar,
			Stage:  stage.name,
			Index:  i + 1,
			Total:  len(stages),
			Step:   stage.step,
		}); err != nil {
			return nil, err
		}
	}

	if p.analyzer != nil {
		r.outcome.Usage = p.analyzer.Usage()
	}
	r.outcome.Elapsed = time.Since(started)
	logger.Info("video processed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("info_quality", r.outcome.InfoQualityScore),
		logging.Int("viewer_interest", r.outcome.ViewerInterestScore),
		logging.Int("total_tokens", r.outcome.Usage.TotalTokens),
		logging.Duration("elapsed", r.outcome.Elapsed),
	)
	return r.outcome, nil
}

func (p *Pipeline) contentAnalyzer(ctx context.Context) (ContentAnalyzer, error) {
	if p.analyzer != nil {
		return p.analyzer, nil
	}
	backend, err := analysis.NewBackend(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.analyzer = analysis.New(backend, p.confirmer, p.cfg.LLM.TokenConfirmThreshold, p.base)
	return p.analyzer, nil
}

func (p *Pipeline) localTranscriber() (LocalTranscriber, error) {
	if p.transcriber != nil {
		return p.transcriber, nil
	}
	t, err := p.newTranscriber(p.cfg, p.base, p.bars)
	if err != nil {
		return nil, err
	}
	p.transcriber = t
	return t, nil
}

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"ytanalyzer/internal/fileutil"
	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/report"
	"ytanalyzer/internal/services"
	"ytanalyzer/internal/store"
	"ytanalyzer/internal/textutil"
	"ytanalyzer/internal/transcript"
	"ytanalyzer/internal/transcription"
)

const (
	transcriptFileName = "transcript.md"
	analysisFileName   = "analysis.md"
)

func (r *run) metadata(p *Pipeline) func(context.Context, *slog.Logger) error {
	return func(ctx context.Context, logger *slog.Logger) error {
		meta, err := p.source.Metadata(ctx, r.req.URL)
		if err != nil {
			return err
		}
		r.meta = meta
		r.outcome.Title = meta.Title
		logger.Info("metadata fetched",
			logging.String("title", meta.Title),
			logging.String("channel", meta.Channel),
			logging.Int("comments", len(meta.Comments)),
		)
		return nil
	}
}

func (r *run) transcripts(p *Pipeline) func(context.Context, *slog.Logger) error {
	return func(ctx context.Context, logger *slog.Logger) error {
		platform, err := p.source.PlatformTranscript(ctx, r.req.URL)
		if err != nil {
			return err
		}
		r.platform = platform

		if r.req.UseWhisper {
			r.local = p.transcribeLocal(ctx, r.req.URL, logger)
		} else {
			logger.Info("local transcription skipped")
		}

		platformText := transcript.PlainText(r.platform)
		if platformText == "" && r.local.Empty() {
			return services.Wrap(services.ErrNotFound, "transcripts", "collect", "no captions and no local transcript", ErrNoTranscript)
		}

		attrs := []logging.Attr{
			logging.Int("platform_segments", len(r.platform)),
			logging.Bool("local_used", !r.local.Empty()),
		}
		if platformText != "" && !r.local.Empty() {
			attrs = append(attrs, logging.Float64("agreement", textutil.Agreement(platformText, r.local.Text())))
		}
		logger.Info("transcripts collected", logging.Args(attrs...)...)
		return nil
	}
}

// transcribeLocal runs the local pass with SIGINT routed to its context only.
// Failures and interrupts are logged and yield nil.
func (p *Pipeline) transcribeLocal(ctx context.Context, url string, logger *slog.Logger) *transcription.Result {
	t, err := p.localTranscriber()
	if err != nil {
		logging.WarnWithContext(logger, "local transcription unavailable", "transcription_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.String(logging.FieldImpact, "continuing with platform captions only"),
		)
		return nil
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	result, err := t.Transcribe(sigCtx, url)
	if err != nil {
		logging.WarnWithContext(logger, "local transcription failed", "transcription_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.String(logging.FieldImpact, "continuing with platform captions only"),
		)
		return nil
	}
	if result == nil && ctx.Err() == nil {
		logger.Info("local transcription interrupted; continuing with platform captions")
	}
	return result
}

func (r *run) analyze(p *Pipeline) func(context.Context, *slog.Logger) error {
	return func(ctx context.Context, logger *slog.Logger) error {
		analyzer, err := p.contentAnalyzer(ctx)
		if err != nil {
			return err
		}
		rec, err := analyzer.CompareTranscripts(ctx, r.platform, r.local)
		if err != nil {
			return err
		}
		r.rec = rec
		r.outcome.SecondaryUsed = rec.SecondaryUsed

		result, err := analyzer.AnalyzeContent(ctx, r.meta, rec.Text, r.req.ViewerProfile)
		if err != nil {
			return err
		}
		r.result = result
		r.outcome.InfoQualityScore = result.InfoQuality
		r.outcome.ViewerInterestScore = result.ViewerInterest
		logger.Info("analysis complete",
			logging.Int("info_quality", result.InfoQuality),
			logging.Int("viewer_interest", result.ViewerInterest),
			logging.Int("salient_points", len(result.SalientPoints)),
		)
		return nil
	}
}

func (r *run) save(p *Pipeline) func(context.Context, *slog.Logger) error {
	return func(ctx context.Context, logger *slog.Logger) error {
		transcriptMD, err := report.FormatTranscript(r.rec)
		if err != nil {
			return err
		}
		analysisMD, err := report.FormatAnalysis(r.result)
		if err != nil {
			return err
		}

		dir := p.cfg.VideoOutputDir(r.id)
		transcriptPath := filepath.Join(dir, transcriptFileName)
		analysisPath := filepath.Join(dir, analysisFileName)
		if err := fileutil.WriteStringAtomic(transcriptPath, transcriptMD); err != nil {
			return services.Wrap(services.ErrTransient, "save", "write transcript", transcriptPath, err)
		}
		if err := fileutil.WriteStringAtomic(analysisPath, analysisMD); err != nil {
			return services.Wrap(services.ErrTransient, "save", "write analysis", analysisPath, err)
		}

		video := &store.Video{
			ID:                  r.id,
			URL:                 r.req.URL,
			Title:               r.meta.Title,
			Description:         r.meta.Description,
			TopComments:         r.meta.Comments,
			TranscriptFile:      transcriptPath,
			AnalysisFile:        analysisPath,
			InfoQualityScore:    r.result.InfoQuality,
			ViewerInterestScore: r.result.ViewerInterest,
		}
		if err := p.store.Upsert(ctx, video); err != nil {
			return err
		}
		r.outcome.TranscriptPath = transcriptPath
		r.outcome.AnalysisPath = analysisPath
		logger.Info("results saved",
			logging.String("transcript_file", transcriptPath),
			logging.String("analysis_file", analysisPath),
		)
		return nil
	}
}

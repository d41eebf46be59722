package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/deps"
	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/progress"
	"ytanalyzer/internal/services/whisperx"
	"ytanalyzer/internal/services/ytdlp"
	"ytanalyzer/internal/transcript"
)

// Result is a completed local transcription.
type Result struct {
	Segments []transcript.Segment
	Strategy string
	Model    string
	Elapsed  time.Duration
}

// Text renders the transcript, with speaker paragraphs when diarized.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return transcript.SpeakerText(r.Segments)
}

// Empty reports whether the result carries no usable text.
func (r *Result) Empty() bool {
	return r == nil || transcript.PlainText(r.Segments) == ""
}

// AudioDownloader fetches a video's audio track into a directory.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, url, destDir string, progress func(ytdlp.DownloadProgress) error) (string, error)
}

// Option customises a Transcriber.
type Option func(*Transcriber)

// WithDownloader replaces the yt-dlp audio downloader.
func WithDownloader(d AudioDownloader) Option {
	return func(t *Transcriber) { t.downloader = d }
}

// WithStrategy replaces the speech strategy. Injected strategies skip the
// executable check.
func WithStrategy(s whisperx.Strategy) Option {
	return func(t *Transcriber) { t.strategy = s }
}

// WithProgress sets the progress bar factory.
func WithProgress(f *progress.Factory) Option {
	return func(t *Transcriber) { t.bars = f }
}

// Transcriber downloads audio and runs local speech-to-text.
type Transcriber struct {
	downloader AudioDownloader
	strategy   whisperx.Strategy
	tempRoot   string
	bars       *progress.Factory
	logger     *slog.Logger
}

// New builds a transcriber. Unless a strategy is injected, the configured
// strategy's executables must be on PATH.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Transcriber, error) {
	if cfg == nil {
		return nil, errors.New("transcription: config required")
	}
	t := &Transcriber{
		tempRoot: cfg.Paths.TempAudioDir,
		bars:     progress.Disabled(),
		logger:   logging.NewComponentLogger(logger, "transcription"),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.downloader == nil {
		client, err := ytdlp.New(cfg.YouTube.YtDlpBinary, cfg.YouTube.TimeoutSeconds)
		if err != nil {
			return nil, err
		}
		t.downloader = client
	}
	if t.strategy == nil {
		if err := deps.RequireAll(deps.Transcription(cfg, false)); err != nil {
			return nil, fmt.Errorf("transcription unavailable: %w", err)
		}
		strategy, err := whisperx.New(whisperx.Config{
			Strategy:      cfg.Whisper.Strategy,
			Model:         cfg.Whisper.Model,
			Device:        cfg.Whisper.Device,
			Language:      cfg.Whisper.Language,
			Diarize:       cfg.Whisper.Diarize,
			VADMethod:     cfg.Whisper.VADMethod,
			HFToken:       cfg.Whisper.HFToken,
			FFprobeBinary: cfg.YouTube.FFprobeBinary,
		}, nil)
		if err != nil {
			return nil, err
		}
		t.strategy = strategy
	}
	t.logger.Info("transcriber ready",
		logging.String("strategy", t.strategy.Name()),
		logging.String("model", t.strategy.Model()),
	)
	return t, nil
}

// Transcribe downloads the audio for url and transcribes it. A cancelled ctx
// yields (nil, nil). The scratch directory is removed on every path.
func (t *Transcriber) Transcribe(ctx context.Context, url string) (*Result, error) {
	started := time.Now()
	if err := os.MkdirAll(t.tempRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create temp audio root: %w", err)
	}
	workDir, err := os.MkdirTemp(t.tempRoot, "audio-")
	if err != nil {
		return nil, fmt.Errorf("create temp audio dir: %w", err)
	}
	defer t.cleanup(workDir)

	audioPath, err := t.download(ctx, url, workDir)
	if err != nil {
		return t.handleFailure(ctx, "download", err)
	}

	segments, err := t.transcribe(ctx, audioPath, filepath.Join(workDir, "out"))
	if err != nil {
		return t.handleFailure(ctx, "transcribe", err)
	}

	result := &Result{
		Segments: segments,
		Strategy: t.strategy.Name(),
		Model:    t.strategy.Model(),
		Elapsed:  time.Since(started),
	}
	t.logger.Info("local transcription complete",
		logging.Int("segments", len(segments)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (t *Transcriber) download(ctx context.Context, url, workDir string) (string, error) {
	bar := t.bars.Bytes(0, "Downloading audio")
	defer bar.Finish()
	throttle := logging.NewProgressThrottle(25)

	return t.downloader.DownloadAudio(ctx, url, workDir, func(p ytdlp.DownloadProgress) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bar.SetMax(p.Total)
		bar.Set(p.Downloaded)
		if pct := p.Percent(); throttle.Report(pct) {
			t.logger.Debug("audio download progress", logging.Float64("percent", pct))
		}
		return nil
	})
}

func (t *Transcriber) transcribe(ctx context.Context, audioPath, outputDir string) ([]transcript.Segment, error) {
	bar := t.bars.Percent(fmt.Sprintf("Transcribing (%s)", t.strategy.Name()))
	defer bar.Finish()
	throttle := logging.NewProgressThrottle(10)

	return t.strategy.Transcribe(ctx, audioPath, outputDir, func(pct float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pct >= 0 {
			bar.Set(int64(pct))
		}
		if throttle.Report(pct) {
			t.logger.Debug("transcription progress", logging.Float64("percent", pct))
		}
		return nil
	})
}

func (t *Transcriber) handleFailure(ctx context.Context, step string, err error) (*Result, error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		logging.WarnWithContext(t.logger, "local transcription cancelled", "transcription_cancelled",
			logging.String("step", step),
			logging.String(logging.FieldErrorHint, "rerun with Whisper enabled to retry"),
			logging.String(logging.FieldImpact, "continuing with the platform transcript only"),
		)
		return nil, nil
	}
	return nil, fmt.Errorf("transcription %s: %w", step, err)
}

func (t *Transcriber) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logging.WarnWithContext(t.logger, "temp audio cleanup failed", "temp_cleanup_failed",
			logging.String("path", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "disk space is not reclaimed"),
		)
		return
	}
	t.logger.Debug("temp audio removed", logging.String("path", dir))
}

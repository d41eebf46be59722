package whisperx

import (
	"context"
	"fmt"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/transcript"
)

// ProgressFunc receives completion in the 0-100 range, or -1 when the
// strategy cannot tell. Returning an error aborts the transcription.
type ProgressFunc func(percent float64) error

// Strategy transcribes one audio file into timed segments.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string
	// Binaries lists the executables the strategy needs on PATH.
	Binaries() []string
	// Model returns the configured model name.
	Model() string
	Transcribe(ctx context.Context, audioPath, outputDir string, progress ProgressFunc) ([]transcript.Segment, error)
}

// New builds the strategy named by cfg.Strategy. A nil executor runs real
// processes.
func New(cfg Config, exec services.Executor) (Strategy, error) {
	if exec == nil {
		// Torch 2.6 changed torch.load to weights_only=true, which breaks
		// pyannote checkpoints loaded by whisperx.
		exec = services.CommandExecutor{Env: []string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"}}
	}
	switch cfg.Strategy {
	case "", StrategyWhisper:
		return &whisperStrategy{cfg: cfg, exec: exec}, nil
	case StrategyWhisperX:
		return &whisperXStrategy{cfg: cfg, exec: exec}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcription", "select strategy", fmt.Sprintf("unknown strategy %q", cfg.Strategy), nil)
	}
}

func report(progress ProgressFunc, percent float64) error {
	if progress == nil {
		return nil
	}
	return progress(percent)
}

func toolError(name string, err error) error {
	if services.IsNotInstalled(err) {
		return services.Wrap(services.ErrExternalTool, "transcription", name, "executable not found", err)
	}
	return services.Wrap(services.ErrExternalTool, "transcription", name, "transcription failed", err)
}

package whisperx

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/transcript"
)

var progressPattern = regexp.MustCompile(`Progress:\s*([0-9]+(?:\.[0-9]+)?)%`)

type whisperXStrategy struct {
	cfg  Config
	exec services.Executor
}

func (s *whisperXStrategy) Name() string  { return StrategyWhisperX }
func (s *whisperXStrategy) Model() string { return s.cfg.model() }

func (s *whisperXStrategy) Binaries() []string {
	return []string{orDefault(s.cfg.UVXBinary, UVXCommand)}
}

// passes is the number of progress-reporting passes whisperx makes:
// transcription then alignment. Diarization does not print progress.
const passes = 2

func (s *whisperXStrategy) Transcribe(ctx context.Context, audioPath, outputDir string, progress ProgressFunc) ([]transcript.Segment, error) {
	if audioPath == "" || outputDir == "" {
		return nil, fmt.Errorf("whisperx: audio path and output dir required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("whisperx: ensure output dir: %w", err)
	}

	tracker := &passTracker{}
	onLine := func(line string) error {
		pct, ok := ParseProgressPercent(line)
		if !ok {
			return nil
		}
		return report(progress, tracker.observe(pct))
	}

	if err := s.exec.Run(ctx, orDefault(s.cfg.UVXBinary, UVXCommand), s.buildArgs(audioPath, outputDir), onLine); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, toolError(StrategyWhisperX, err)
	}
	segments, err := LoadSegments(resultPath(audioPath, outputDir))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", StrategyWhisperX, "load result", err)
	}
	if err := report(progress, 100); err != nil {
		return nil, err
	}
	return segments, nil
}

func (s *whisperXStrategy) buildArgs(audioPath, outputDir string) []string {
	args := make([]string, 0, 32)
	if s.cfg.device() == CUDADevice {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}
	args = append(args,
		"whisperx",
		audioPath,
		"--model", s.cfg.model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--print_progress", "True",
	)

	vadMethod := orDefault(s.cfg.VADMethod, VADMethodSilero)
	args = append(args, "--vad_method", vadMethod)
	needsToken := vadMethod == VADMethodPyannote || s.cfg.Diarize
	if needsToken && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if s.cfg.Diarize {
		args = append(args, "--diarize")
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	if s.cfg.device() == CUDADevice {
		args = append(args, "--device", CUDADevice, "--compute_type", CUDAComputeType)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// ParseProgressPercent extracts the value from a "Progress: 42.50%..." line.
func ParseProgressPercent(line string) (float64, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(match[1]), 64)
	if err != nil {
		return 0, false
	}
	return min(100, value), true
}

// passTracker folds per-pass percentages into one monotonic overall value.
// A drop in the raw value marks the start of the next pass.
type passTracker struct {
	pass    int
	lastRaw float64
	overall float64
}

func (t *passTracker) observe(raw float64) float64 {
	if raw < t.lastRaw && t.pass < passes-1 {
		t.pass++
	}
	t.lastRaw = raw
	value := (float64(t.pass)*100 + raw) / passes
	if value > t.overall {
		t.overall = value
	}
	return t.overall
}

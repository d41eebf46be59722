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

// verboseSegmentPattern matches whisper --verbose lines such as
// "[01:02.500 --> 01:05.120]  text" or "[1:00:02.500 --> 1:00:05.120] text".
var verboseSegmentPattern = regexp.MustCompile(`^\[((?:\d+:)?\d+:\d+\.\d+) --> ((?:\d+:)?\d+:\d+\.\d+)\]`)

type whisperStrategy struct {
	cfg  Config
	exec services.Executor
}

func (s *whisperStrategy) Name() string  { return StrategyWhisper }
func (s *whisperStrategy) Model() string { return s.cfg.model() }

func (s *whisperStrategy) Binaries() []string {
	return []string{orDefault(s.cfg.WhisperBinary, WhisperCommand), orDefault(s.cfg.FFprobeBinary, FFprobeCommand)}
}

func (s *whisperStrategy) Transcribe(ctx context.Context, audioPath, outputDir string, progress ProgressFunc) ([]transcript.Segment, error) {
	if audioPath == "" || outputDir == "" {
		return nil, fmt.Errorf("whisper: audio path and output dir required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("whisper: ensure output dir: %w", err)
	}

	// Without a duration the run still works; progress is just unknown.
	duration, _ := ProbeDuration(ctx, s.exec, s.cfg.FFprobeBinary, audioPath)

	last := -1.0
	onLine := func(line string) error {
		end, ok := ParseVerboseEnd(line)
		if !ok {
			return nil
		}
		percent := -1.0
		if duration > 0 {
			percent = min(100, end/duration*100)
			if percent < last {
				percent = last
			}
			last = percent
		}
		return report(progress, percent)
	}

	if err := s.exec.Run(ctx, orDefault(s.cfg.WhisperBinary, WhisperCommand), s.buildArgs(audioPath, outputDir), onLine); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, toolError(StrategyWhisper, err)
	}
	segments, err := LoadSegments(resultPath(audioPath, outputDir))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", StrategyWhisper, "load result", err)
	}
	if err := report(progress, 100); err != nil {
		return nil, err
	}
	return segments, nil
}

func (s *whisperStrategy) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.model(),
		"--device", s.cfg.device(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--verbose", "True",
		"--task", "transcribe",
	}
	if s.cfg.device() == CPUDevice {
		args = append(args, "--fp16", "False")
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	return args
}

// ParseVerboseEnd extracts the end timestamp, in seconds, of a verbose
// whisper segment line.
func ParseVerboseEnd(line string) (float64, bool) {
	match := verboseSegmentPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	return parseClock(match[2])
}

// parseClock parses "MM:SS.mmm" or "HH:MM:SS.mmm".
func parseClock(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	total := 0.0
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

package whisperx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/whisperx"
)

type stubExecutor struct {
	lines    []string
	result   string
	duration string
	runErr   error
	binaries []string
	runArgs  []string
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, onLine func(string) error) error {
	s.binaries = append(s.binaries, binary)
	s.runArgs = args
	for _, line := range s.lines {
		if err := onLine(line); err != nil {
			return err
		}
	}
	if s.runErr != nil {
		return s.runErr
	}
	outDir := argValue(args, "--output_dir")
	if s.result != "" && outDir != "" {
		return os.WriteFile(filepath.Join(outDir, "audio.json"), []byte(s.result), 0o644)
	}
	return nil
}

func (s *stubExecutor) Output(_ context.Context, binary string, _ []string) ([]byte, error) {
	s.binaries = append(s.binaries, binary)
	if s.duration == "" {
		return nil, errors.New("no duration")
	}
	return []byte(s.duration + "\n"), nil
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

const whisperJSON = `{"text":" hello world again","segments":[
 {"start":0.0,"end":2.0,"text":" hello"},
 {"start":2.0,"end":4.0,"text":"   "},
 {"start":4.0,"end":8.0,"text":" world again"}]}`

func setup(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	return audio, filepath.Join(dir, "out")
}

func TestWhisperStrategyReportsProgressFromTimestamps(t *testing.T) {
	audio, out := setup(t)
	exec := &stubExecutor{
		duration: "8.0",
		result:   whisperJSON,
		lines: []string{
			"Detecting language using up to the first 30 seconds.",
			"[00:00.000 --> 00:02.000]  hello",
			"[00:04.000 --> 00:08.000]  world again",
		},
	}
	strategy, err := whisperx.New(whisperx.Config{Strategy: whisperx.StrategyWhisper, Model: "tiny"}, exec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var seen []float64
	segments, err := strategy.Transcribe(context.Background(), audio, out, func(p float64) error {
		seen = append(seen, p)
		return nil
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 || segments[1].Text != "world again" || segments[1].End != 8 {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if !slices.Equal(seen, []float64{25, 100, 100}) {
		t.Fatalf("unexpected progress %v", seen)
	}
	if argValue(exec.runArgs, "--fp16") != "False" || argValue(exec.runArgs, "--model") != "tiny" {
		t.Fatalf("unexpected args %v", exec.runArgs)
	}
	if !slices.Equal(exec.binaries, []string{"ffprobe", "whisper"}) {
		t.Fatalf("unexpected binaries %v", exec.binaries)
	}
}

func TestWhisperStrategyUnknownDuration(t *testing.T) {
	audio, out := setup(t)
	exec := &stubExecutor{result: whisperJSON, lines: []string{"[00:00.000 --> 00:02.000]  hello"}}
	strategy, _ := whisperx.New(whisperx.Config{}, exec)

	var seen []float64
	if _, err := strategy.Transcribe(context.Background(), audio, out, func(p float64) error {
		seen = append(seen, p)
		return nil
	}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if seen[0] != -1 {
		t.Fatalf("expected unknown progress first, got %v", seen)
	}
}

func TestProgressErrorAbortsTranscription(t *testing.T) {
	audio, out := setup(t)
	exec := &stubExecutor{duration: "10", result: whisperJSON, lines: []string{"[00:00.000 --> 00:02.000]  hello"}}
	strategy, _ := whisperx.New(whisperx.Config{}, exec)

	stop := errors.New("stop")
	_, err := strategy.Transcribe(context.Background(), audio, out, func(float64) error { return stop })
	if !errors.Is(err, services.ErrExternalTool) || !errors.Is(err, stop) {
		t.Fatalf("expected wrapped stop error, got %v", err)
	}
}

func TestWhisperXStrategyDiarizeArgsAndSpeakers(t *testing.T) {
	audio, out := setup(t)
	exec := &stubExecutor{
		result: `{"segments":[{"start":0,"end":1,"text":"hi","speaker":"SPEAKER_00"},{"start":1,"end":2,"text":"yo","speaker":"SPEAKER_01"}]}`,
		lines: []string{
			"Progress: 50.00%...",
			"Progress: 100.00%...",
			"Progress: 20.00%...",
			"Progress: 100.00%...",
		},
	}
	strategy, err := whisperx.New(whisperx.Config{
		Strategy: whisperx.StrategyWhisperX,
		Device:   "cuda",
		Diarize:  true,
		HFToken:  "hf-secret",
		Language: "en",
	}, exec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var seen []float64
	segments, err := strategy.Transcribe(context.Background(), audio, out, func(p float64) error {
		seen = append(seen, p)
		return nil
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if segments[1].Speaker != "SPEAKER_01" {
		t.Fatalf("expected speaker label, got %+v", segments)
	}
	if !slices.Equal(seen, []float64{25, 50, 60, 100, 100}) {
		t.Fatalf("unexpected progress %v", seen)
	}
	args := exec.runArgs
	if !slices.Contains(args, "--diarize") || argValue(args, "--hf_token") != "hf-secret" {
		t.Fatalf("expected diarize args, got %v", args)
	}
	if argValue(args, "--index-url") != whisperx.CUDAIndexURL || argValue(args, "--compute_type") != "float16" {
		t.Fatalf("expected cuda args, got %v", args)
	}
	if argValue(args, "--language") != "en" || argValue(args, "--print_progress") != "True" {
		t.Fatalf("unexpected args %v", args)
	}
	if exec.binaries[0] != "uvx" {
		t.Fatalf("expected uvx, got %v", exec.binaries)
	}
}

func TestMissingResultIsValidationError(t *testing.T) {
	audio, out := setup(t)
	strategy, _ := whisperx.New(whisperx.Config{Strategy: whisperx.StrategyWhisperX}, &stubExecutor{})
	if _, err := strategy.Transcribe(context.Background(), audio, out, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	if _, err := whisperx.New(whisperx.Config{Strategy: "vosk"}, &stubExecutor{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseVerboseEnd(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"[00:01.000 --> 00:03.500]  text", 3.5, true},
		{"[59:59.000 --> 1:00:02.250] text", 3602.25, true},
		{"Detected language: English", 0, false},
	}
	for _, tc := range cases {
		got, ok := whisperx.ParseVerboseEnd(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseVerboseEnd(%q) = %v,%v want %v,%v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseProgressPercent(t *testing.T) {
	if got, ok := whisperx.ParseProgressPercent("Progress: 42.50%..."); !ok || got != 42.5 {
		t.Fatalf("got %v,%v", got, ok)
	}
	if _, ok := whisperx.ParseProgressPercent(">>Performing transcription..."); ok {
		t.Fatal("expected no match")
	}
}

func TestProbeDuration(t *testing.T) {
	got, err := whisperx.ProbeDuration(context.Background(), &stubExecutor{duration: "253.4"}, "", "a.mp3")
	if err != nil || got != 253.4 {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := whisperx.ProbeDuration(context.Background(), &stubExecutor{duration: "N/A"}, "", "a.mp3"); err == nil {
		t.Fatal("expected error for non-numeric duration")
	}
}

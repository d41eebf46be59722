package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytanalyzer/internal/analysis"
	"ytanalyzer/internal/config"
	"ytanalyzer/internal/extractor"
	"ytanalyzer/internal/pipeline"
	"ytanalyzer/internal/services/llm"
	"ytanalyzer/internal/store"
	"ytanalyzer/internal/testsupport"
	"ytanalyzer/internal/transcript"
)

const testVideoID = "dQw4w9WgXcQ"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"OPENAI_API_KEY", "LLM_API_KEY", "GEMINI_API_KEY", "YOUTUBE_API_KEY", "TOKEN_CONFIRM_THRESHOLD", "WHISPER_DEVICE"} {
		t.Setenv(key, "")
	}

	cfg := testsupport.NewConfig(t)
	cfg.YouTube.YtDlpBinary = "sh"
	configPath := filepath.Join(base, "ytanalyzer.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func (e *cliTestEnv) seed(t *testing.T, id string) {
	t.Helper()
	s, err := store.Open(e.cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()
	video := testsupport.SeedVideo(t, s, id)
	video.InfoQualityScore = 7
	video.TopComments = []extractor.Comment{{Author: "viewer", Text: "Classic", Likes: 99}}
	if err := s.Upsert(context.Background(), video); err != nil {
		t.Fatalf("update seed: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string, opts ...pipeline.Option) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type stubSource struct{}

func (stubSource) VideoID(_ context.Context, url string) (string, error) {
	id, _ := extractor.ParseVideoID(url)
	return id, nil
}

func (stubSource) Metadata(_ context.Context, url string) (*extractor.Metadata, error) {
	id, _ := extractor.ParseVideoID(url)
	return &extractor.Metadata{ID: id, URL: url, Title: "Never Gonna Give You Up"}, nil
}

func (stubSource) PlatformTranscript(context.Context, string) ([]transcript.Segment, error) {
	return []transcript.Segment{{Text: "never gonna give you up"}}, nil
}

type stubBackend struct {
	requests []llm.Request
}

func (b *stubBackend) Model() string { return "stub" }

func (b *stubBackend) EstimateTokens(context.Context, llm.Request) (int, error) { return 10, nil }

func (b *stubBackend) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	b.requests = append(b.requests, req)
	content := "# Corrected Transcript\nnever gonna give you up"
	if req.JSON {
		content = `{"salient_points":["a promise"],"counterfactuals":["none"],"bias":"none",` +
			`"claims_to_review":[],"info_quality":3,"viewer_interest":9}`
	}
	return &llm.Completion{Content: content, Model: "stub", Usage: llm.Usage{TotalTokens: 15}}, nil
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No videos processed yet")

	env.seed(t, testVideoID)
	out, _, err = runCLI(t, []string{"list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, testVideoID)
	requireContains(t, out, "7/10")

	out, _, err = runCLI(t, []string{"show", testVideoID}, env.configPath, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "https://www.youtube.com/watch?v="+testVideoID)
	requireContains(t, out, "viewer (99 likes): Classic")

	if _, _, err := runCLI(t, []string{"show", "missing"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown video")
	}
}

func TestRunSkipsProcessedVideo(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seed(t, testVideoID)

	out, _, err := runCLI(t, []string{"--url", "https://youtu.be/" + testVideoID}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "has already been processed")
}

func TestInteractiveRunPromptsAndSaves(t *testing.T) {
	env := setupCLITestEnv(t)
	backend := &stubBackend{}
	stdin := "https://www.youtube.com/watch?v=" + testVideoID + "\n\nn\n"

	out, _, err := runCLI(t, nil, env.configPath, stdin,
		pipeline.WithSource(stubSource{}),
		pipeline.WithAnalyzer(analysis.New(backend, nil, 0, nil)),
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Enter YouTube URL: ")
	requireContains(t, out, "press Enter for default")
	requireContains(t, out, "Use Whisper for additional transcription? (y/N): ")
	requireContains(t, out, "Information quality: 3/10")
	requireContains(t, out, "Viewer interest:     9/10")
	requireContains(t, out, "Whisper transcript:  no")

	if len(backend.requests) != 2 {
		t.Fatalf("expected two llm requests, got %d", len(backend.requests))
	}
	if !strings.Contains(backend.requests[1].System, env.cfg.Analysis.DefaultViewerProfile) {
		t.Fatal("expected default viewer profile in analysis prompt")
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, testVideoID, "analysis.md")); err != nil {
		t.Fatalf("expected analysis report: %v", err)
	}
}

func TestRunRequiresURL(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, nil, env.configPath, "\n"); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath, "")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Output directory")
	requireContains(t, out, "All required checks passed")
}

func TestTokenConfirmerPrompts(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("y\n\n"), &out)
	confirmer := p.tokenConfirmer(false)
	est := analysis.Estimate{Operation: "analyze_content", Model: "m", Tokens: 5000, Threshold: 1000}

	ok, err := confirmer.Confirm(context.Background(), est)
	if err != nil || !ok {
		t.Fatalf("expected approval, got %v (%v)", ok, err)
	}
	requireContains(t, out.String(), "Content analysis is estimated at 5000 tokens")

	ok, err = confirmer.Confirm(context.Background(), est)
	if err != nil || ok {
		t.Fatalf("expected empty answer to decline, got %v (%v)", ok, err)
	}

	auto := p.tokenConfirmer(true)
	if ok, _ := auto.Confirm(context.Background(), est); !ok {
		t.Fatal("expected auto approval")
	}
}

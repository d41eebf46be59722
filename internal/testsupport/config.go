package testsupport

import (
	"path/filepath"
	"testing"

	"ytanalyzer/internal/config"
)

// ConfigOption adjusts the config NewConfig returns.
type ConfigOption func(*config.Config)

// NewConfig returns defaults rooted in a fresh temp directory, with a dummy
// LLM key and every other credential cleared so the host environment cannot
// leak into tests.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.TempAudioDir = filepath.Join(root, "temp_audio_files")

	cfg.LLM.APIKey = "test"
	cfg.LLM.BaseURL = "http://127.0.0.1:0/v1/chat/completions"
	cfg.YouTube.APIKey = ""
	cfg.Gemini.APIKey = ""
	cfg.Whisper.HFToken = ""

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLLMBaseURL points the OpenAI-compatible backend at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(c *config.Config) { c.LLM.BaseURL = url }
}

// WithTokenThreshold overrides the confirmation threshold.
func WithTokenThreshold(tokens int) ConfigOption {
	return func(c *config.Config) { c.LLM.TokenConfirmThreshold = tokens }
}

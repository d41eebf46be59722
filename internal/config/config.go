package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
	TempAudioDir string `toml:"temp_audio_dir"`
}

// LLM contains connection settings for the transcript reconciliation and
// content analysis model.
type LLM struct {
	// Provider selects the backend: "openai" (any OpenAI-compatible chat
	// completions endpoint) or "gemini".
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	// TokenConfirmThreshold is the estimated prompt size above which the user
	// is asked to confirm the request. Zero disables confirmation.
	TokenConfirmThreshold int `toml:"token_confirm_threshold"`
}

// Gemini contains settings for the Google Gemini backend.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Whisper contains configuration for local speech-to-text.
type Whisper struct {
	// Enabled is the default answer to the interactive "use Whisper" prompt.
	Enabled bool `toml:"enabled"`
	// Strategy selects "whisper" (single pass) or "whisperx" (align + diarize).
	Strategy  string `toml:"strategy"`
	Model     string `toml:"model"`
	Device    string `toml:"device"`
	Language  string `toml:"language"`
	Diarize   bool   `toml:"diarize"`
	VADMethod string `toml:"vad_method"`
	HFToken   string `toml:"hf_token"`
}

// YouTube contains configuration for metadata and caption retrieval.
type YouTube struct {
	YtDlpBinary         string   `toml:"ytdlp_binary"`
	FFprobeBinary       string   `toml:"ffprobe_binary"`
	APIKey              string   `toml:"api_key"`
	TopComments         int      `toml:"top_comments"`
	MaxComments         int      `toml:"max_comments"`
	TranscriptLanguages []string `toml:"transcript_languages"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
}

// Analysis contains content analysis defaults.
type Analysis struct {
	DefaultViewerProfile string `toml:"default_viewer_profile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// RetentionDays prunes log files older than this many days. Zero keeps
	// everything.
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for ytanalyzer.
//
// Configuration sections by subsystem:
//   - Paths: output, database, log and scratch directories
//   - LLM: reconciliation/analysis model connection and token confirmation
//   - Gemini: credentials when llm.provider is "gemini"
//   - Whisper: local transcription strategy, model and device
//   - YouTube: yt-dlp binary, Data API key, comment and caption settings
//   - Analysis: default viewer profile
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	LLM      LLM      `toml:"llm"`
	Gemini   Gemini   `toml:"gemini"`
	Whisper  Whisper  `toml:"whisper"`
	YouTube  YouTube  `toml:"youtube"`
	Analysis Analysis `toml:"analysis"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ytanalyzer/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in the
// working directory is loaded first so its values act as environment
// fallbacks. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		raw, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// resolveConfigPath picks the file to load. An explicit path wins even when
// missing; otherwise ./ytanalyzer.toml, then the per-user default.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("ytanalyzer.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{projectPath, defaultPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.DataDir, c.Paths.LogDir, c.Paths.TempAudioDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "videos.db")
}

// VideoOutputDir returns the report directory for a single video.
func (c *Config) VideoOutputDir(videoID string) string {
	return filepath.Join(c.Paths.OutputDir, videoID)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved connection settings for the active backend.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	TimeoutSeconds int
}

// ActiveLLM returns the connection settings for the configured provider.
// Gemini credentials come from the [gemini] section when set.
func (c *Config) ActiveLLM() LLMConfig {
	cfg := LLMConfig{
		Provider:       c.LLM.Provider,
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Temperature:    c.LLM.Temperature,
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
	if cfg.Provider == ProviderGemini {
		cfg.BaseURL = ""
		if key := strings.TrimSpace(c.Gemini.APIKey); key != "" {
			cfg.APIKey = key
		}
		if model := strings.TrimSpace(c.Gemini.Model); model != "" {
			cfg.Model = model
		}
	}
	return cfg
}

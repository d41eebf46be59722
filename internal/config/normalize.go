package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLLM(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeWhisper()
	c.normalizeYouTube()
	c.normalizeAnalysis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempAudioDir) == "" {
		c.Paths.TempAudioDir = defaultTempAudioDir
	}
	if c.Paths.TempAudioDir, err = expandPath(c.Paths.TempAudioDir); err != nil {
		return fmt.Errorf("paths.temp_audio_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = envFirst("OPENAI_API_KEY", "LLM_API_KEY")
	}
	if value, ok := os.LookupEnv("TOKEN_CONFIRM_THRESHOLD"); ok && strings.TrimSpace(value) != "" {
		threshold, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("TOKEN_CONFIRM_THRESHOLD: invalid integer %q", value)
		}
		c.LLM.TokenConfirmThreshold = threshold
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = envFirst("GEMINI_API_KEY")
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Strategy = strings.ToLower(strings.TrimSpace(c.Whisper.Strategy))
	if c.Whisper.Strategy == "" {
		c.Whisper.Strategy = defaultWhisperStrategy
	}
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	if value, ok := os.LookupEnv("WHISPER_DEVICE"); ok && strings.TrimSpace(value) != "" {
		c.Whisper.Device = value
	}
	c.Whisper.Device = strings.ToLower(strings.TrimSpace(c.Whisper.Device))
	if c.Whisper.Device == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	c.Whisper.Language = normalizeLanguage(c.Whisper.Language)
	c.Whisper.VADMethod = strings.ToLower(strings.TrimSpace(c.Whisper.VADMethod))
	if c.Whisper.VADMethod == "" {
		c.Whisper.VADMethod = defaultWhisperVADMethod
	}
	c.Whisper.HFToken = strings.TrimSpace(c.Whisper.HFToken)
	if c.Whisper.HFToken == "" {
		c.Whisper.HFToken = envFirst("HUGGING_FACE_HUB_TOKEN", "HF_TOKEN")
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.YtDlpBinary = strings.TrimSpace(c.YouTube.YtDlpBinary)
	if c.YouTube.YtDlpBinary == "" {
		c.YouTube.YtDlpBinary = defaultYtDlpBinary
	}
	c.YouTube.FFprobeBinary = strings.TrimSpace(c.YouTube.FFprobeBinary)
	if c.YouTube.FFprobeBinary == "" {
		c.YouTube.FFprobeBinary = defaultFFprobeBinary
	}
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = envFirst("YOUTUBE_API_KEY")
	}
	if c.YouTube.TopComments <= 0 {
		c.YouTube.TopComments = defaultTopComments
	}
	if c.YouTube.MaxComments < c.YouTube.TopComments {
		c.YouTube.MaxComments = max(defaultMaxComments, c.YouTube.TopComments)
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeoutSeconds
	}

	langs := make([]string, 0, len(c.YouTube.TranscriptLanguages))
	seen := make(map[string]struct{}, len(c.YouTube.TranscriptLanguages))
	for _, lang := range c.YouTube.TranscriptLanguages {
		normalized := normalizeLanguage(lang)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	c.YouTube.TranscriptLanguages = langs
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.DefaultViewerProfile = strings.TrimSpace(c.Analysis.DefaultViewerProfile)
	if c.Analysis.DefaultViewerProfile == "" {
		c.Analysis.DefaultViewerProfile = defaultViewerProfile
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// envFirst returns the first non-empty value among the named variables.
func envFirst(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// normalizeLanguage reduces a language tag to its ISO 639-1 base ("en-US" ->
// "en"). Unparseable values are lowercased and returned as-is so yt-dlp can
// still try them.
func normalizeLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return strings.ToLower(value)
	}
	base, _ := tag.Base()
	return base.String()
}

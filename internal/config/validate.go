package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.TokenConfirmThreshold < 0 {
		return errors.New("llm.token_confirm_threshold must be >= 0")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	switch c.Whisper.Strategy {
	case StrategyWhisper, StrategyWhisperX:
	default:
		return fmt.Errorf("whisper.strategy must be %q or %q, got %q", StrategyWhisper, StrategyWhisperX, c.Whisper.Strategy)
	}
	switch c.Whisper.Device {
	case "cpu", "cuda", "mps":
	default:
		return fmt.Errorf("whisper.device must be cpu, cuda or mps, got %q", c.Whisper.Device)
	}
	if c.Whisper.Diarize && c.Whisper.Strategy != StrategyWhisperX {
		return errors.New("whisper.diarize requires whisper.strategy = \"whisperx\"")
	}
	if c.Whisper.Diarize && strings.TrimSpace(c.Whisper.HFToken) == "" {
		return errors.New("whisper.hf_token must be set when whisper.diarize is true (or set HF_TOKEN)")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.TopComments <= 0 {
		return errors.New("youtube.top_comments must be positive")
	}
	if c.YouTube.MaxComments < c.YouTube.TopComments {
		return errors.New("youtube.max_comments must be >= youtube.top_comments")
	}
	return nil
}

// RequireLLMKey reports a helpful error when the active backend has no API key.
// It is checked lazily so commands that never call the LLM work without one.
func (c *Config) RequireLLMKey() error {
	active := c.ActiveLLM()
	if active.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/ytanalyzer/config.toml"
	}
	if active.Provider == ProviderGemini {
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'ytanalyzer config init')", defaultPath)
	}
	return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'ytanalyzer config init')", defaultPath)
}

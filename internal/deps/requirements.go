package deps

import (
	"ytanalyzer/internal/config"
	"ytanalyzer/internal/services/whisperx"
)

// Extraction lists the tools needed for metadata and captions.
func Extraction(cfg *config.Config) []Requirement {
	return []Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.YouTube.YtDlpBinary,
		Description: "metadata, comments, captions and audio download",
	}}
}

// Transcription lists the tools the configured speech strategy needs.
// optional marks them as not required for a run (Whisper is opt-in).
func Transcription(cfg *config.Config, optional bool) []Requirement {
	if cfg.Whisper.Strategy == config.StrategyWhisperX {
		return []Requirement{{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "launches whisperx for aligned, diarized transcription",
			Optional:    optional,
		}}
	}
	return []Requirement{
		{
			Name:        "whisper",
			Command:     whisperx.WhisperCommand,
			Description: "local speech-to-text",
			Optional:    optional,
		},
		{
			Name:        "ffprobe",
			Command:     cfg.YouTube.FFprobeBinary,
			Description: "audio duration for transcription progress",
			Optional:    true,
		},
	}
}

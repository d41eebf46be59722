package config

// Provider names accepted by llm.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Whisper strategies accepted by whisper.strategy.
const (
	StrategyWhisper  = "whisper"
	StrategyWhisperX = "whisperx"
)

const (
	defaultOutputDir             = "output"
	defaultDataDir               = "data"
	defaultLogDir                = "~/.local/share/ytanalyzer/logs"
	defaultTempAudioDir          = "temp_audio_files"
	defaultLLMProvider           = ProviderOpenAI
	defaultLLMBaseURL            = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel              = "gpt-4-1106-preview"
	defaultLLMTemperature        = 0.7
	defaultLLMTimeoutSeconds     = 300
	defaultTokenConfirmThreshold = 20000
	defaultGeminiModel           = "gemini-2.5-flash"
	defaultWhisperStrategy       = StrategyWhisper
	defaultWhisperModel          = "large"
	defaultWhisperDevice         = "cpu"
	defaultWhisperLanguage       = "en"
	defaultWhisperVADMethod      = "silero"
	defaultYtDlpBinary           = "yt-dlp"
	defaultFFprobeBinary         = "ffprobe"
	defaultTopComments           = 5
	defaultMaxComments           = 100
	defaultYouTubeTimeoutSeconds = 120
	defaultViewerProfile         = "the average humanist/idealist AI technology and enthusiast"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			TempAudioDir: defaultTempAudioDir,
		},
		LLM: LLM{
			Provider:              defaultLLMProvider,
			BaseURL:               defaultLLMBaseURL,
			Model:                 defaultLLMModel,
			Temperature:           defaultLLMTemperature,
			TimeoutSeconds:        defaultLLMTimeoutSeconds,
			TokenConfirmThreshold: defaultTokenConfirmThreshold,
		},
		Gemini: Gemini{
			Model: defaultGeminiModel,
		},
		Whisper: Whisper{
			Strategy:  defaultWhisperStrategy,
			Model:     defaultWhisperModel,
			Device:    defaultWhisperDevice,
			Language:  defaultWhisperLanguage,
			VADMethod: defaultWhisperVADMethod,
		},
		YouTube: YouTube{
			YtDlpBinary:         defaultYtDlpBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			TopComments:         defaultTopComments,
			MaxComments:         defaultMaxComments,
			TranscriptLanguages: []string{"en"},
			TimeoutSeconds:      defaultYouTubeTimeoutSeconds,
		},
		Analysis: Analysis{
			DefaultViewerProfile: defaultViewerProfile,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

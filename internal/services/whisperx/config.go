package whisperx

// Config captures runtime settings for local speech transcription.
type Config struct {
	// Strategy selects StrategyWhisper or StrategyWhisperX.
	Strategy string
	// Model is the speech model name (e.g. "base", "large-v3").
	Model string
	// Device is "cpu", "cuda" or "mps".
	Device string
	// Language is an ISO 639-1 hint; empty lets the model detect it.
	Language string
	// Diarize labels speakers (whisperx only).
	Diarize bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote models.
	HFToken string
	// WhisperBinary overrides the single-pass executable.
	WhisperBinary string
	// UVXBinary overrides the uvx launcher used for whisperx.
	UVXBinary string
	// FFprobeBinary overrides ffprobe used for duration probing.
	FFprobeBinary string
}

// Strategy names.
const (
	StrategyWhisper  = "whisper"
	StrategyWhisperX = "whisperx"
)

// Transcription constants.
const (
	DefaultModel      = "base"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	CUDAComputeType   = "float16"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Command names for external tools.
const (
	WhisperCommand = "whisper"
	UVXCommand     = "uvx"
	FFprobeCommand = "ffprobe"
)

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) device() string {
	if c.Device != "" {
		return c.Device
	}
	return CPUDevice
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// Package whisperx runs local speech-to-text over a downloaded audio file.
//
// Two strategies share the Strategy interface:
//   - whisper: the openai-whisper CLI in a single pass; progress is derived
//     from segment timestamps against the ffprobe duration
//   - whisperx: WhisperX via uvx with alignment and optional speaker
//     diarization; progress comes from its --print_progress output
//
// Both write a JSON result that is loaded into transcript segments. Commands
// run through services.Executor so tests can substitute canned output.
package whisperx

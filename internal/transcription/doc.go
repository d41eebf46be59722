// Package transcription produces a local speech-to-text transcript for a
// video: it downloads the audio into a fresh scratch directory, runs the
// configured whisper strategy, and always removes the scratch directory.
//
// Cancelling the context (Ctrl+C during transcription) is not an error: the
// transcriber returns a nil result so the run continues with the platform
// transcript alone.
package transcription

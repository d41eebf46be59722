// Package pipeline runs one video through metadata extraction, transcript
// collection, LLM analysis and persistence.
//
// A run resolves the video id first and stops early when the store already
// holds that id, so reprocessing never spends LLM tokens. Otherwise four
// stages run in order: metadata, transcripts, analysis and save. Each stage
// logs stage_start/stage_complete with the run's correlation id and advances
// the overall progress bar.
//
// Local transcription is optional and best effort. Interrupts are trapped
// only while it runs, so Ctrl+C abandons the local pass and the run continues
// with the platform captions alone.
package pipeline

// Package analysis sends transcripts to the configured LLM backend.
//
// CompareTranscripts reconciles the platform transcript with an optional
// local transcript into a corrected transcript plus a change report.
// AnalyzeContent produces a structured assessment (salient points,
// counterfactuals, bias, claims, scores) for a viewer profile.
//
// Every request is sized first. When the estimate exceeds the configured
// threshold a Confirmer must approve it; a refusal returns ErrDeclined and
// nothing is sent. Requests are never retried.
package analysis

// Package llm provides a client for OpenAI-compatible chat completion
// endpoints used to reconcile transcripts and analyze video content.
//
// Request carries a system and user prompt plus a JSON-mode flag; Completion
// returns the model text with the provider-reported token usage. The client
// never retries: transport failures, non-2xx statuses, and empty responses are
// returned to the caller, which decides whether the run can continue.
//
// EstimateTokens offers a four-characters-per-token heuristic used before a
// request is sent, and DecodeLLMJSON tolerates code fences and stray prose
// around JSON payloads.
package llm

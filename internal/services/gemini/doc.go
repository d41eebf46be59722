// Package gemini adapts Google Gemini (google.golang.org/genai) to the same
// Complete/EstimateTokens contract as the OpenAI-compatible llm client, so the
// analyzer can switch providers through llm.provider alone.
package gemini

// Command ytanalyzer analyses a YouTube video: it collects metadata, top
// comments and transcripts, asks an LLM to reconcile the transcripts and
// assess the content, writes Markdown reports and records the result in a
// local SQLite database.
//
// Run without arguments for interactive prompts, or pass --url, --profile and
// --whisper. Subcommands list and show processed videos, check readiness and
// manage the configuration file.
package main

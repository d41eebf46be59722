// Package logging assembles structured slog loggers and formatting helpers used
// across ytanalyzer.
//
// It owns the console and JSON handlers, routes records to stderr plus the
// rotating log directory, and exposes context-aware helpers so pipeline code
// tags log lines with the video ID, stage, and correlation ID automatically.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging

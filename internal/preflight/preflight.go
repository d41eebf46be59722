package preflight

import (
	"context"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional failures are reported but do not block a run.
	Optional bool
	Detail   string
}

// Options controls which checks RunAll performs.
type Options struct {
	// Online enables checks that contact remote services.
	Online bool
}

// RunAll executes the preflight checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Temp audio directory", cfg.Paths.TempAudioDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	requirements := deps.Extraction(cfg)
	requirements = append(requirements, deps.Transcription(cfg, !cfg.Whisper.Enabled)...)
	results = append(results, binaryResults(deps.CheckBinaries(requirements))...)

	results = append(results, CheckLLMKey(cfg), CheckYouTubeAPIKey(cfg))
	if opts.Online {
		results = append(results, CheckLLM(ctx, cfg))
	}
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

func binaryResults(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		r := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		if status.Available {
			r.Detail = status.Path
		} else {
			r.Detail = status.Detail
		}
		if status.Description != "" {
			r.Detail += " (" + status.Description + ")"
		}
		results = append(results, r)
	}
	return results
}

// Package preflight provides readiness checks for the directories, tools and
// services ytanalyzer depends on.
//
// The CLI "ytanalyzer check" command runs RunAll and prints each Result.
// Checks are offline unless Options.Online is set, in which case the active
// LLM backend is also probed with a single health request.
package preflight

// Package services defines shared utilities consumed by the pipeline stages and
// their external integrations.
//
// Context helpers stamp video IDs, stage names, and correlation identifiers
// for logging. Structured error markers plus the Wrap helper give failures a
// consistent shape so the CLI can print an actionable hint.
package services

// Package config loads, normalizes, and validates ytanalyzer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment fallbacks such as OPENAI_API_KEY, WHISPER_DEVICE and
// TOKEN_CONFIRM_THRESHOLD. The Config type centralizes every knob the pipeline
// and CLI need so output directories and external service credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

// Package config loads, normalizes, and validates cuesync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment credentials such as
// OPENAI_API_KEY and GEMINI_API_KEY. The Config type centralizes every knob the
// daemon and CLI need: translation provider, speech defaults, persistence
// backend, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config

// Package services defines shared utilities consumed by the pipeline
// components and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session tokens, video identifiers, and
//     correlation identifiers for logging and stale-result checks.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (not found, validation, external provider, stale context)
//     with errors.Is.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the daemon and CLI.
package services

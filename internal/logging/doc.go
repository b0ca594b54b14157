// Package logging assembles structured slog loggers and formatting helpers used
// across cuesync.
//
// It owns the configurable console/JSON handlers, duplicates daemon output to
// a JSON log file, and tags records with the request, session, and video ids
// carried by the context. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging

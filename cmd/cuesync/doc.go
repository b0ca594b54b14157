// Package main hosts the cuesync CLI entrypoint and command graph.
//
// Offline commands (parse, segments, reconcile, translate, prompt, play,
// store) work directly on files and the configured store. serve runs the
// page-session daemon and status reports readiness plus the daemon's
// session over its HTTP API.
package main

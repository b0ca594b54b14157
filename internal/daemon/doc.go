// Package daemon hosts the long-running companion process: it owns the host
// page model, polls it for navigation, and serves the command surface over
// HTTP.
//
// A flock-based lock in the data directory keeps a single daemon per
// machine. Every request gets a request id (X-Request-ID or a fresh UUID)
// that flows into the logs through the request context. When api.token is
// configured, requests must carry "Authorization: Bearer <token>".
package daemon

// Package host is an in-memory model of the page cuesync attaches to: a URL,
// a player element with its container, native text tracks, and linked track
// elements. The daemon drives it from page-side events; tests drive it
// directly.
package host

// Package preflight provides readiness checks for the directories, store,
// translation credential, and daemon that cuesync depends on.
//
// The daemon runs RunAll at startup and logs failures without refusing to
// start. The CLI "cuesync status" command renders the same results next to
// the daemon check so a missing API key or unwritable data directory shows
// up before the first translate call fails.
package preflight

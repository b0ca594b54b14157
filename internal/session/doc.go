// Package session owns the subtitle session bound to the host page's player.
//
// A Manager holds everything that changes when subtitles are loaded or the
// page navigates: the cue and segment sets, the overlay, the tick listener,
// and the speech state. Loading tears down the previous session completely
// before building the next one, so reloading the same text never stacks
// overlays or listeners.
package session

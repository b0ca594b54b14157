// Package playback keeps the subtitle overlay in step with the player clock.
//
// Every tick is evaluated against the whole cue set rather than the previous
// tick, so seeks, rate changes, and missed ticks need no special handling.
package playback

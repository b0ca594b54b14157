// Package subtitles implements the cue pipeline: parsing WEBVTT-style text
// into timed cues, formatting cues back into the canonical document,
// re-pairing translated text with original timings, and merging cues into
// spoken segments for speech synthesis.
//
// Parsing is best effort. Malformed cue blocks are dropped and counted in a
// ParseReport instead of failing the whole document, because translated
// input from remote providers is not guaranteed to be well formed.
package subtitles

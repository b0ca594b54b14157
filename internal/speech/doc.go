// Package speech drives a synthesis engine through an explicit {Idle,
// Speaking} state machine. Each utterance is a cancellable Task; starting a
// new utterance cancels the one in flight so at most one is ever audible.
package speech

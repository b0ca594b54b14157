package speech

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when an utterance has nothing to say.
var ErrEmptyText = errors.New("speech: empty text")

// EventKind identifies an engine lifecycle event.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is reported by an engine while an utterance plays. An engine sends
// one EventStart followed by exactly one EventEnd or EventError, then closes
// the channel.
type Event struct {
	Kind EventKind
	Err  error
}

// Request is a single utterance.
type Request struct {
	Text  string
	Voice string
	Rate  float64
}

// Voice is a synthesis voice offered by an engine.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// Engine synthesizes speech. Cancelling ctx must stop playback.
type Engine interface {
	Speak(ctx context.Context, req Request) (<-chan Event, error)
}

// VoiceLister is implemented by engines that can enumerate their voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}

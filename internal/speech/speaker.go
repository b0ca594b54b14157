package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"cuesync/internal/logging"
)

// State is the speaker's playback state.
type State int

const (
	Idle State = iota
	Speaking
)

func (s State) String() string {
	if s == Speaking {
		return "speaking"
	}
	return "idle"
}

// Speaker owns the engine and serializes utterances.
//
// Transitions: Idle -> Speaking on EventStart; Speaking -> Idle on EventEnd,
// EventError, or Cancel. Events from a superseded task are ignored.
type Speaker struct {
	engine Engine
	logger *slog.Logger

	mu      sync.Mutex
	voice   string
	rate    float64
	state   State
	current *Task
	onState func(State)
}

// NewSpeaker wraps engine with default voice and rate settings.
func NewSpeaker(engine Engine, voice string, rate float64, logger *slog.Logger) *Speaker {
	return &Speaker{
		engine: engine,
		voice:  voice,
		rate:   ClampRate(rate),
		logger: logging.NewComponentLogger(logger, "speech"),
	}
}

// OnStateChange registers fn to observe state transitions. fn runs with the
// speaker lock released.
func (s *Speaker) OnStateChange(fn func(State)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// Configure updates the voice and rate used by later utterances.
func (s *Speaker) Configure(voice string, rate float64) {
	s.mu.Lock()
	s.voice = voice
	s.rate = ClampRate(rate)
	s.mu.Unlock()
}

// Voice returns the configured voice name.
func (s *Speaker) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Rate returns the configured speaking rate.
func (s *Speaker) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// State returns the event-driven playback state.
func (s *Speaker) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speaking reports whether an utterance is pending or playing.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil || s.state == Speaking
}

// Speak cancels any utterance in flight and starts text.
func (s *Speaker) Speak(text string) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	task := newTask(text, cancel)

	s.mu.Lock()
	previous := s.current
	s.current = task
	req := Request{Text: text, Voice: s.voice, Rate: s.rate}
	s.mu.Unlock()

	if previous != nil {
		previous.Cancel()
	}

	events, err := s.engine.Speak(ctx, req)
	if err != nil {
		s.fail(task, err)
		return task
	}
	go s.drive(ctx, task, events)
	return task
}

// Cancel stops the current utterance and returns to Idle.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	task := s.current
	s.current = nil
	changed := s.state != Idle
	s.state = Idle
	hook := s.onState
	s.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	if changed && hook != nil {
		hook(Idle)
	}
}

func (s *Speaker) drive(ctx context.Context, task *Task, events <-chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				s.transition(task, Idle)
				task.finish(ctx.Err())
				return
			}
			switch ev.Kind {
			case EventStart:
				s.transition(task, Speaking)
			case EventEnd:
				s.transition(task, Idle)
				task.finish(nil)
				return
			case EventError:
				s.fail(task, ev.Err)
				return
			}
		case <-ctx.Done():
			s.transition(task, Idle)
			task.finish(ctx.Err())
			return
		}
	}
}

// fail recovers from an engine error: the speaker returns to Idle and the
// error is logged, never propagated.
func (s *Speaker) fail(task *Task, err error) {
	if err == nil {
		err = context.Canceled
	}
	if !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(context.Background(), s.logger, "speech synthesis failed", "speech_error",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cue was not voiced"),
			logging.String(logging.FieldErrorHint, "check the speech engine or pick another voice"),
		)
	}
	s.transition(task, Idle)
	task.finish(err)
}

func (s *Speaker) transition(task *Task, next State) {
	s.mu.Lock()
	if s.current != task {
		s.mu.Unlock()
		return
	}
	if next == Idle {
		s.current = nil
	}
	changed := s.state != next
	s.state = next
	hook := s.onState
	s.mu.Unlock()

	if changed && hook != nil {
		hook(next)
	}
}

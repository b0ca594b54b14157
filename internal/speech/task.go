package speech

import (
	"context"
	"sync"
)

// Task is a cancellable handle on one utterance.
type Task struct {
	text   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

func newTask(text string, cancel context.CancelFunc) *Task {
	return &Task{text: text, cancel: cancel, done: make(chan struct{})}
}

// Text returns the utterance text.
func (t *Task) Text() string { return t.text }

// Done is closed when the utterance ends, fails, or is cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the terminal error once Done is closed: nil on a normal end,
// context.Canceled after Cancel, or the engine's error.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the utterance. It is safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
	t.finish(context.Canceled)
}

func (t *Task) finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

package speech

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cuesync/internal/logging"
)

// wordsPerSecond at rate 1.0.
const wordsPerSecond = 2.5

// LogEngine is a headless engine: it logs each utterance and reports its end
// after the time a voice would take to read it.
type LogEngine struct {
	Logger *slog.Logger
	// Scale multiplies the estimated duration; zero means 1.
	Scale float64
	// Available is returned by Voices.
	Available []Voice
}

// DefaultVoices is the catalogue a LogEngine advertises when none is set.
var DefaultVoices = []Voice{
	{Name: "log-en-US", Lang: "en-US"},
	{Name: "log-vi-VN", Lang: "vi-VN"},
	{Name: "log-zh-CN", Lang: "zh-CN"},
	{Name: "log-ja-JP", Lang: "ja-JP"},
}

// Voices implements VoiceLister.
func (e *LogEngine) Voices(context.Context) ([]Voice, error) {
	if len(e.Available) == 0 {
		return append([]Voice(nil), DefaultVoices...), nil
	}
	return append([]Voice(nil), e.Available...), nil
}

// EstimateDuration is how long text takes to read at rate.
func EstimateDuration(text string, rate float64) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	seconds := float64(words) / (wordsPerSecond * ClampRate(rate))
	return time.Duration(seconds * float64(time.Second))
}

// Speak implements Engine.
func (e *LogEngine) Speak(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	scale := e.Scale
	if scale <= 0 {
		scale = 1
	}
	duration := time.Duration(float64(EstimateDuration(req.Text, req.Rate)) * scale)
	logger := logging.NewComponentLogger(e.Logger, "speech")
	logger.Info("speaking",
		logging.String("text", req.Text),
		logging.String("voice", req.Voice),
		logging.Float64("rate", ClampRate(req.Rate)),
		logging.Duration("estimate", duration),
	)

	events := make(chan Event, 2)
	go func() {
		defer close(events)
		events <- Event{Kind: EventStart}
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			events <- Event{Kind: EventError, Err: ctx.Err()}
		case <-timer.C:
			events <- Event{Kind: EventEnd}
		}
	}()
	return events, nil
}

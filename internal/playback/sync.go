package playback

import (
	"log/slog"
	"strings"
	"sync"

	"cuesync/internal/logging"
	"cuesync/internal/subtitles"
)

// Overlay is the on-page element subtitles are drawn into.
type Overlay interface {
	Render(lines []string)
	Show()
	Hide()
}

// Speaker voices cue text.
type Speaker interface {
	Speak(text string)
	Speaking() bool
	Cancel()
}

// ActiveCue returns the index of the first cue whose bounds contain t.
func ActiveCue(cues []subtitles.Cue, t float64) (int, bool) {
	for i, cue := range cues {
		if cue.Contains(t) {
			return i, true
		}
	}
	return -1, false
}

// Synchronizer applies player ticks to an overlay and a speaker.
type Synchronizer struct {
	mu            sync.Mutex
	cues          []subtitles.Cue
	overlay       Overlay
	speaker       Speaker
	speechEnabled bool
	displayed     string
	lastSpoken    string
	logger        *slog.Logger
}

// NewSynchronizer binds a cue set to an overlay. speaker may be nil when
// speech is unavailable.
func NewSynchronizer(cues []subtitles.Cue, overlay Overlay, speaker Speaker, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		cues:    cues,
		overlay: overlay,
		speaker: speaker,
		logger:  logging.NewComponentLogger(logger, "playback"),
	}
}

// SetSpeechEnabled toggles speech. Disabling cancels any utterance in flight.
func (s *Synchronizer) SetSpeechEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speechEnabled = enabled
	if !enabled {
		s.lastSpoken = ""
		if s.speaker != nil && s.speaker.Speaking() {
			s.speaker.Cancel()
		}
	}
}

// Clear drops the cue set and hides the overlay. Later ticks find no cue.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues = nil
	s.displayed = ""
	s.lastSpoken = ""
	if s.overlay != nil {
		s.overlay.Hide()
	}
}

// ResetSpoken forgets the last spoken text so the current cue is voiced again.
func (s *Synchronizer) ResetSpoken() {
	s.mu.Lock()
	s.lastSpoken = ""
	s.mu.Unlock()
}

// Displayed returns the text currently rendered, empty when hidden.
func (s *Synchronizer) Displayed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayed
}

// LastSpoken returns the text most recently handed to the speaker.
func (s *Synchronizer) LastSpoken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSpoken
}

// Tick evaluates the player position t in seconds.
func (s *Synchronizer) Tick(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := ActiveCue(s.cues, t)
	if !ok {
		if s.displayed != "" {
			s.logger.Debug("no active cue", logging.Seconds("time", t))
		}
		s.displayed = ""
		if s.overlay != nil {
			s.overlay.Hide()
		}
		if s.speechEnabled && s.speaker != nil && s.speaker.Speaking() {
			s.speaker.Cancel()
			s.lastSpoken = ""
		}
		return
	}

	text := s.cues[idx].Text
	if text == s.displayed {
		return
	}
	s.displayed = text
	if s.overlay != nil {
		s.overlay.Render(strings.Split(text, "\n"))
		s.overlay.Show()
	}
	if s.speechEnabled && s.speaker != nil && text != s.lastSpoken {
		s.speaker.Speak(text)
		s.lastSpoken = text
	}
}

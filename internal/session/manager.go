package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"cuesync/internal/logging"
	"cuesync/internal/page"
	"cuesync/internal/playback"
	"cuesync/internal/services"
	"cuesync/internal/speech"
	"cuesync/internal/subtitles"
)

// ErrNoPlayer is returned when the page has no player to attach to.
var ErrNoPlayer = services.Wrap(services.ErrNotFound, "session", "load", "no video player found on the page", nil)

// State is the session lifecycle state.
type State int

const (
	Empty State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "empty"
}

// Options tune a Manager.
type Options struct {
	// LogDropped logs a warning when parsing drops malformed cue blocks.
	LogDropped bool
	// SpeechEnabled is the initial speech toggle.
	SpeechEnabled bool
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State          string  `json:"state"`
	VideoID        string  `json:"video_id,omitempty"`
	Token          string  `json:"token"`
	Cues           int     `json:"cues"`
	Segments       int     `json:"segments"`
	HasText        bool    `json:"has_text"`
	OverlayText    string  `json:"overlay_text,omitempty"`
	OverlayVisible bool    `json:"overlay_visible"`
	SpeechEnabled  bool    `json:"speech_enabled"`
	Speaking       bool    `json:"speaking"`
	Voice          string  `json:"voice,omitempty"`
	Rate           float64 `json:"rate"`
	LastSpoken     string  `json:"last_spoken,omitempty"`
}

// Manager is the single owner of session state. All methods are safe for
// concurrent use; mutations are serialized so teardown always completes
// before the next setup.
type Manager struct {
	host    Host
	speaker *speech.Speaker
	logger  *slog.Logger
	opts    Options

	mu             sync.Mutex
	state          State
	text           string
	cues           []subtitles.Cue
	segments       []subtitles.Segment
	overlay        Overlay
	removeListener func()
	syncer         *playback.Synchronizer
	speechEnabled  bool
	videoID        string
	token          string
}

// NewManager creates an empty session for host. speaker may be nil when no
// speech engine is available.
func NewManager(host Host, speaker *speech.Speaker, logger *slog.Logger, opts Options) *Manager {
	m := &Manager{
		host:          host,
		speaker:       speaker,
		logger:        logging.NewComponentLogger(logger, "session"),
		opts:          opts,
		speechEnabled: opts.SpeechEnabled && speaker != nil,
		token:         uuid.NewString(),
	}
	if host != nil {
		m.videoID, _ = page.VideoID(host.URL())
	}
	return m
}

// Load parses text and binds it to the page's current player.
func (m *Manager) Load(ctx context.Context, text string) error {
	cues, report := subtitles.ParseWithReport(text)
	segments := subtitles.SegmentCues(cues)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.host == nil {
		return ErrNoPlayer
	}
	player, ok := m.host.Player()
	if !ok || player == nil {
		return ErrNoPlayer
	}

	ctx = services.WithSessionID(ctx, m.token)
	if report.Dropped > 0 && m.opts.LogDropped {
		logging.WarnWithContext(ctx, m.logger, "dropped malformed cue blocks", "parse_failure",
			logging.Int("dropped", report.Dropped),
			logging.Int("blocks", report.Blocks),
			logging.Any("lines", report.DroppedLines),
			logging.String(logging.FieldImpact, "those cues will not be shown or spoken"),
			logging.String(logging.FieldErrorHint, "check the timing lines in the subtitle text"),
		)
	}

	m.teardownLocked()

	overlay := player.AttachOverlay()
	synchronizer := playback.NewSynchronizer(cues, overlay, m.voice(), m.logger)
	synchronizer.SetSpeechEnabled(m.speechEnabled)
	m.removeListener = player.OnTimeUpdate(synchronizer.Tick)
	m.overlay = overlay
	m.syncer = synchronizer
	m.cues = cues
	m.segments = segments
	m.text = text
	m.state = Active

	synchronizer.Tick(player.CurrentTime())

	m.logger.InfoContext(services.WithSessionID(ctx, m.token), "subtitles loaded",
		logging.Int("cues", len(cues)),
		logging.Int("segments", len(segments)),
		logging.String(logging.FieldVideoID, m.videoID),
	)
	return nil
}

// Navigate records a move to url. When nothing is saved for the new video
// the session becomes Empty; otherwise the saved text becomes pending until
// the next Load. The old overlay stays attached until then.
func (m *Manager) Navigate(ctx context.Context, url, saved string, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.videoID, _ = page.VideoID(url)
	m.token = uuid.NewString()
	m.cues = nil
	m.segments = nil
	m.text = ""
	m.state = Empty
	if m.syncer != nil {
		m.syncer.Clear()
	}
	if m.speaker != nil {
		m.speaker.Cancel()
	}
	if found {
		m.text = saved
	}
	m.logger.InfoContext(services.WithVideoID(ctx, m.videoID), "page navigated",
		logging.String("url", url),
		logging.Bool("saved_text", found),
	)
}

// teardownLocked cancels speech and detaches the previous overlay and tick
// listener. m.mu must be held.
func (m *Manager) teardownLocked() {
	if m.speaker != nil {
		m.speaker.Cancel()
	}
	if m.removeListener != nil {
		m.removeListener()
		m.removeListener = nil
	}
	if m.overlay != nil {
		m.overlay.Detach()
		m.overlay = nil
	}
	m.syncer = nil
}

// Close tears the session down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.state = Empty
}

// Tick forwards a player position to the active synchronizer.
func (m *Manager) Tick(t float64) {
	m.mu.Lock()
	synchronizer := m.syncer
	m.mu.Unlock()
	if synchronizer != nil {
		synchronizer.Tick(t)
	}
}

// SetSpeechEnabled toggles speech; disabling cancels in-flight speech.
func (m *Manager) SetSpeechEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled && m.speaker == nil {
		return services.Wrap(services.ErrConfiguration, "session", "speech", "no speech engine available", nil)
	}
	m.speechEnabled = enabled
	if m.syncer != nil {
		m.syncer.SetSpeechEnabled(enabled)
	} else if !enabled && m.speaker != nil {
		m.speaker.Cancel()
	}
	return nil
}

// Speaker returns the session's speaker, nil when speech is unavailable.
func (m *Manager) Speaker() *speech.Speaker {
	return m.speaker
}

// Text returns the current subtitle text, which may be pending after navigation.
func (m *Manager) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// SetText replaces the pending text without loading it.
func (m *Manager) SetText(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

// Cues returns a copy of the active cue set.
func (m *Manager) Cues() []subtitles.Cue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]subtitles.Cue(nil), m.cues...)
}

// Segments returns a copy of the active spoken segments.
func (m *Manager) Segments() []subtitles.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]subtitles.Segment(nil), m.segments...)
}

// VideoID returns the id of the video the session is bound to.
func (m *Manager) VideoID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoID
}

// Token identifies the current video context. Navigate mints a new one;
// Load keeps it. Work started under one token must check IsCurrent before
// applying its result.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsCurrent reports whether token still names the current context.
func (m *Manager) IsCurrent(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token != "" && token == m.token
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a read-only view of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		State:         m.state.String(),
		VideoID:       m.videoID,
		Token:         m.token,
		Cues:          len(m.cues),
		Segments:      len(m.segments),
		HasText:       m.text != "",
		SpeechEnabled: m.speechEnabled,
	}
	if m.overlay != nil {
		snap.OverlayText = m.overlay.Text()
		snap.OverlayVisible = m.overlay.Visible()
	}
	if m.syncer != nil {
		snap.LastSpoken = m.syncer.LastSpoken()
	}
	if m.speaker != nil {
		snap.Speaking = m.speaker.Speaking()
		snap.Voice = m.speaker.Voice()
		snap.Rate = m.speaker.Rate()
	}
	return snap
}

// IsNoPlayer reports whether err is ErrNoPlayer.
func IsNoPlayer(err error) bool {
	return errors.Is(err, ErrNoPlayer)
}

func (m *Manager) voice() playback.Speaker {
	if m.speaker == nil {
		return nil
	}
	return speakerAdapter{m.speaker}
}

// speakerAdapter drops the task handle playback does not need.
type speakerAdapter struct {
	*speech.Speaker
}

func (a speakerAdapter) Speak(text string) {
	a.Speaker.Speak(text)
}

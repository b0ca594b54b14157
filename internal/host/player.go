package host

import (
	"sort"
	"sync"

	"cuesync/internal/session"
	"cuesync/internal/subtitles"
)

// Track modes as reported by the page.
const (
	ModeShowing  = "showing"
	ModeHidden   = "hidden"
	ModeDisabled = "disabled"
)

// TextTrack is a native track whose cues the page has already parsed. Cue
// text may still carry inline markup.
type TextTrack struct {
	Kind     string          `json:"kind"`
	Label    string          `json:"label,omitempty"`
	Language string          `json:"language,omitempty"`
	Mode     string          `json:"mode"`
	Cues     []subtitles.Cue `json:"cues,omitempty"`
}

// TrackElement is a <track> child of the player pointing at a subtitle file.
type TrackElement struct {
	Kind    string `json:"kind"`
	Src     string `json:"src"`
	SrcLang string `json:"srclang,omitempty"`
	Label   string `json:"label,omitempty"`
}

// Player is an in-memory video element.
type Player struct {
	mu        sync.Mutex
	id        string
	current   float64
	tracks    []TextTrack
	elements  []TrackElement
	container *Container
	listeners map[int]func(float64)
	nextID    int
}

// NewPlayer creates a player with an empty container.
func NewPlayer(id string, tracks []TextTrack, elements []TrackElement) *Player {
	return &Player{
		id:        id,
		tracks:    append([]TextTrack(nil), tracks...),
		elements:  append([]TrackElement(nil), elements...),
		container: &Container{},
		listeners: make(map[int]func(float64)),
	}
}

// ID returns the player's identifier.
func (p *Player) ID() string { return p.id }

// CurrentTime implements session.Player.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// AttachOverlay implements session.Player.
func (p *Player) AttachOverlay() session.Overlay {
	return p.container.attach()
}

// Container returns the element overlays are attached to.
func (p *Player) Container() *Container { return p.container }

// OnTimeUpdate implements session.Player.
func (p *Player) OnTimeUpdate(fn func(float64)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// ListenerCount returns how many tick listeners are registered.
func (p *Player) ListenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Advance moves the playhead to t and delivers a tick to every listener.
func (p *Player) Advance(t float64) {
	p.mu.Lock()
	p.current = t
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(float64), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.listeners[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// TextTracks returns the player's native tracks.
func (p *Player) TextTracks() []TextTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TextTrack(nil), p.tracks...)
}

// TrackElements returns the player's <track> children.
func (p *Player) TrackElements() []TrackElement {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TrackElement(nil), p.elements...)
}

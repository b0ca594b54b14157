package session

import "cuesync/internal/playback"

// Host is the page the session is retrofitted onto.
type Host interface {
	// Player returns the page's current player, if any. It is queried on
	// every load because navigation may replace the element.
	Player() (Player, bool)
	URL() string
}

// Player is the page's video element.
type Player interface {
	CurrentTime() float64
	// AttachOverlay creates a fresh overlay inside the player's container.
	AttachOverlay() Overlay
	// OnTimeUpdate registers fn for playback ticks and returns its remover.
	OnTimeUpdate(fn func(t float64)) (remove func())
}

// Overlay is a subtitle element attached to a player container.
type Overlay interface {
	playback.Overlay
	Detach()
	Text() string
	Visible() bool
}

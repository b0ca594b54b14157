package api

import (
	"cuesync/internal/commands"
	"cuesync/internal/host"
)

// LoadRequest loads subtitle text onto the current player. Empty text loads
// the pending session text.
type LoadRequest struct {
	Text string `json:"text"`
}

// TextRequest carries subtitle text for translate and prompt.
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse returns subtitle text.
type TextResponse struct {
	Text string `json:"text"`
}

// ReconcileRequest pairs original and translated documents.
type ReconcileRequest struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// PromptResponse returns a ready-to-paste translation prompt.
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// NavigateRequest reports a page URL change, optionally with the page's
// course title and breadcrumb trail.
type NavigateRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Breadcrumbs []string `json:"breadcrumbs,omitempty"`
}

// TickRequest advances the player clock.
type TickRequest struct {
	Time float64 `json:"time"`
}

// Player actions.
const (
	PlayerAttach = "attach"
	PlayerDetach = "detach"
)

// PlayerRequest attaches a player (with its text tracks) or detaches the
// current one.
type PlayerRequest struct {
	Action   string              `json:"action"`
	ID       string              `json:"id,omitempty"`
	Tracks   []host.TextTrack    `json:"tracks,omitempty"`
	Elements []host.TrackElement `json:"elements,omitempty"`
}

// SpeechRequest updates speech playback settings.
type SpeechRequest struct {
	Enabled bool    `json:"enabled"`
	Voice   string  `json:"voice,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
}

// SettingsRequest updates translation settings.
type SettingsRequest = commands.SettingsUpdate

// StatusResponse is the daemon state.
type StatusResponse struct {
	Running  bool            `json:"running"`
	PID      int             `json:"pid"`
	LockFile string          `json:"lock_file,omitempty"`
	Status   commands.Status `json:"status"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Package extract pulls subtitle text out of the host page's player: from
// native text tracks when the page has parsed them, otherwise from a linked
// subtitle file.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cuesync/internal/host"
	"cuesync/internal/logging"
	"cuesync/internal/services"
	"cuesync/internal/subtitles"
)

// maxSubtitleBytes caps a fetched subtitle file.
const maxSubtitleBytes = 8 << 20

// ErrNoSubtitles is returned when the player carries no usable subtitles.
var ErrNoSubtitles = services.Wrap(services.ErrNotFound, "extract", "subtitles", "no subtitle tracks found", nil)

// Source is a player exposing its subtitle tracks.
type Source interface {
	TextTracks() []host.TextTrack
	TrackElements() []host.TrackElement
}

// FromTracks renders the best native track as canonical text: the first
// showing track, else the first track with cues. Inline markup is stripped.
func FromTracks(tracks []host.TextTrack) (string, bool) {
	track, ok := pickTrack(tracks)
	if !ok {
		return "", false
	}
	cues := make([]subtitles.Cue, len(track.Cues))
	for i, cue := range track.Cues {
		cues[i] = subtitles.Cue{Start: cue.Start, End: cue.End, Text: cue.Text}
	}
	return canonical(cues), true
}

// canonical strips inline markup and renders cues in the canonical format.
func canonical(cues []subtitles.Cue) string {
	out := make([]subtitles.Cue, len(cues))
	for i, cue := range cues {
		out[i] = subtitles.Cue{Start: cue.Start, End: cue.End, Text: subtitles.StripMarkup(cue.Text)}
	}
	return subtitles.Format(out)
}

func pickTrack(tracks []host.TextTrack) (host.TextTrack, bool) {
	for _, t := range tracks {
		if t.Mode == host.ModeShowing {
			if len(t.Cues) == 0 {
				break
			}
			return t, true
		}
	}
	for _, t := range tracks {
		if len(t.Cues) > 0 {
			return t, true
		}
	}
	return host.TextTrack{}, false
}

// pickElement returns the first subtitles or captions element, else the first element.
func pickElement(elements []host.TrackElement) (host.TrackElement, bool) {
	for _, el := range elements {
		if el.Kind == "subtitles" || el.Kind == "captions" {
			return el, true
		}
	}
	if len(elements) > 0 {
		return elements[0], true
	}
	return host.TrackElement{}, false
}

// Extractor fetches linked subtitle files when native tracks are empty.
type Extractor struct {
	client *http.Client
	logger *slog.Logger
}

// New creates an Extractor. A nil client gets one with timeout.
func New(client *http.Client, timeout time.Duration, logger *slog.Logger) *Extractor {
	if client == nil {
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Extractor{client: client, logger: logging.NewComponentLogger(logger, "extract")}
}

// FromPlayer returns the player's subtitle text.
func (e *Extractor) FromPlayer(ctx context.Context, player Source) (string, error) {
	if player == nil {
		return "", ErrNoSubtitles
	}
	if text, ok := FromTracks(player.TextTracks()); ok {
		e.logger.InfoContext(ctx, "extracted subtitles from text track",
			logging.Args(logging.DecisionAttrs("subtitle_source", "text_track", "native track has cues")...)...)
		return text, nil
	}
	element, ok := pickElement(player.TrackElements())
	if !ok || strings.TrimSpace(element.Src) == "" {
		return "", ErrNoSubtitles
	}
	e.logger.InfoContext(ctx, "fetching linked subtitle file",
		logging.Args(append(logging.DecisionAttrs("subtitle_source", "track_element", "no native track with cues"),
			logging.String("src", element.Src),
			logging.String("kind", element.Kind))...)...)
	body, err := e.fetch(ctx, element.Src)
	if err != nil {
		return "", err
	}
	cues, report := subtitles.ParseWithReport(body)
	if len(cues) == 0 {
		return "", ErrNoSubtitles
	}
	if report.Dropped > 0 {
		logging.WarnWithContext(ctx, e.logger, "dropped malformed cue blocks in subtitle file", "parse_failure",
			logging.String("src", element.Src),
			logging.Int("dropped", report.Dropped),
			logging.String(logging.FieldImpact, "those cues are missing from the extracted text"),
		)
	}
	return canonical(cues), nil
}

func (e *Extractor) fetch(ctx context.Context, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "fetch", "invalid track url", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "extract", "fetch", "fetch subtitle file", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrExternal, "extract", "fetch", fmt.Sprintf("subtitle file returned status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSubtitleBytes))
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "extract", "fetch", "read subtitle file", err)
	}
	return string(body), nil
}

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cuesync/internal/host"
	"cuesync/internal/services"
	"cuesync/internal/session"
	"cuesync/internal/speech"
)

const lectureURL = "https://www.coursera.org/learn/ml/lecture/abc/intro"

const sampleVTT = "WEBVTT\n\n00:00:01.000 --> 00:00:03.000\nA\n\n00:00:04.000 --> 00:00:06.000\nB.\n"

func newFixture(t *testing.T, opts session.Options) (*host.Page, *host.Player, *session.Manager) {
	t.Helper()
	page := host.NewPage(lectureURL)
	player := host.NewPlayer("video-1", nil, nil)
	page.AttachPlayer(player)
	speaker := speech.NewSpeaker(&speech.LogEngine{Scale: 0.001}, "", 1, nil)
	mgr := session.NewManager(page, speaker, nil, opts)
	t.Cleanup(mgr.Close)
	return page, player, mgr
}

func TestLoadAttachesOverlayAndTicks(t *testing.T) {
	_, player, mgr := newFixture(t, session.Options{})
	player.Advance(2.0)

	if mgr.State() != session.Empty {
		t.Fatal("expected empty before load")
	}
	if err := mgr.Load(context.Background(), sampleVTT); err != nil {
		t.Fatalf("Load: %v", err)
	}
	overlays := player.Container().Overlays()
	if len(overlays) != 1 {
		t.Fatalf("expected one overlay, got %d", len(overlays))
	}
	if !overlays[0].Visible() || overlays[0].Text() != "A" {
		t.Fatalf("initial tick should show A, got visible=%v text=%q", overlays[0].Visible(), overlays[0].Text())
	}

	player.Advance(5.0)
	if overlays[0].Text() != "B." {
		t.Fatalf("expected B. after tick, got %q", overlays[0].Text())
	}
	player.Advance(3.5)
	if overlays[0].Visible() {
		t.Fatal("expected overlay hidden between cues")
	}

	snap := mgr.Snapshot()
	if snap.State != "active" || snap.Cues != 2 || snap.Segments != 1 || snap.VideoID != "ml_intro" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	_, player, mgr := newFixture(t, session.Options{})
	for i := 0; i < 3; i++ {
		if err := mgr.Load(context.Background(), sampleVTT); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	if got := len(player.Container().Overlays()); got != 1 {
		t.Fatalf("expected exactly one overlay, got %d", got)
	}
	if got := player.ListenerCount(); got != 1 {
		t.Fatalf("expected exactly one tick listener, got %d", got)
	}
}

func TestLoadWithoutPlayer(t *testing.T) {
	page, _, mgr := newFixture(t, session.Options{})
	before := mgr.Token()
	page.DetachPlayer()

	err := mgr.Load(context.Background(), sampleVTT)
	if !errors.Is(err, session.ErrNoPlayer) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNoPlayer, got %v", err)
	}
	if !session.IsNoPlayer(err) {
		t.Fatal("IsNoPlayer should match")
	}
	if mgr.State() != session.Empty || mgr.Token() != before || len(mgr.Cues()) != 0 {
		t.Fatal("failed load must leave state unchanged")
	}
}

func TestLoadRequeriesReplacedPlayer(t *testing.T) {
	page, oldPlayer, mgr := newFixture(t, session.Options{})
	if err := mgr.Load(context.Background(), sampleVTT); err != nil {
		t.Fatalf("Load: %v", err)
	}
	oldOverlay := oldPlayer.Container().Overlays()[0]

	newPlayer := host.NewPlayer("video-2", nil, nil)
	page.AttachPlayer(newPlayer)
	if err := mgr.Load(context.Background(), sampleVTT); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if oldOverlay.Attached() || len(oldPlayer.Container().Overlays()) != 0 {
		t.Fatal("old overlay should be detached")
	}
	if oldPlayer.ListenerCount() != 0 {
		t.Fatal("old listener should be removed")
	}
	if len(newPlayer.Container().Overlays()) != 1 || newPlayer.ListenerCount() != 1 {
		t.Fatal("new player should carry the session")
	}
}

func TestNavigateEmptiesSessionAndDefersTeardown(t *testing.T) {
	page, player, mgr := newFixture(t, session.Options{})
	if err := mgr.Load(context.Background(), sampleVTT); err != nil {
		t.Fatalf("Load: %v", err)
	}
	player.Advance(2.0)
	token := mgr.Token()

	next := "https://www.coursera.org/learn/ml/lecture/def/next"
	page.SetURL(next)
	mgr.Navigate(context.Background(), next, "", false)

	if mgr.State() != session.Empty || mgr.Text() != "" || len(mgr.Cues()) != 0 || len(mgr.Segments()) != 0 {
		t.Fatal("navigation without saved text should empty the session")
	}
	if mgr.IsCurrent(token) {
		t.Fatal("navigation should invalidate the previous token")
	}
	if mgr.VideoID() != "ml_next" {
		t.Fatalf("unexpected video id %q", mgr.VideoID())
	}
	overlays := player.Container().Overlays()
	if len(overlays) != 1 {
		t.Fatal("overlay teardown should wait for the next load")
	}
	if overlays[0].Visible() {
		t.Fatal("overlay should be hidden once cues are cleared")
	}
	player.Advance(2.0)
	if overlays[0].Visible() {
		t.Fatal("stale cues must not reappear")
	}
}

func TestNavigateWithSavedText(t *testing.T) {
	_, _, mgr := newFixture(t, session.Options{})
	mgr.Navigate(context.Background(), "https://www.coursera.org/learn/ml/lecture/def/next", sampleVTT, true)
	if mgr.Text() != sampleVTT {
		t.Fatal("saved text should become the pending text")
	}
	if mgr.State() != session.Empty {
		t.Fatal("saved text is not applied until load")
	}
	if err := mgr.Load(context.Background(), mgr.Text()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mgr.State() != session.Active {
		t.Fatal("expected active after load")
	}
}

func TestSpeechFollowsSession(t *testing.T) {
	_, player, mgr := newFixture(t, session.Options{SpeechEnabled: true})
	if err := mgr.Load(context.Background(), sampleVTT); err != nil {
		t.Fatalf("Load: %v", err)
	}
	player.Advance(2.0)
	if got := mgr.Snapshot().LastSpoken; got != "A" {
		t.Fatalf("expected A spoken, got %q", got)
	}

	if err := mgr.SetSpeechEnabled(false); err != nil {
		t.Fatalf("SetSpeechEnabled: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for mgr.Speaker().Speaking() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if mgr.Speaker().Speaking() {
		t.Fatal("disabling speech should stop the speaker")
	}
	if mgr.Snapshot().SpeechEnabled {
		t.Fatal("snapshot should report speech disabled")
	}
}

func TestSpeechUnavailable(t *testing.T) {
	page := host.NewPage(lectureURL)
	mgr := session.NewManager(page, nil, nil, session.Options{SpeechEnabled: true})
	if mgr.Snapshot().SpeechEnabled {
		t.Fatal("speech cannot be enabled without a speaker")
	}
	if err := mgr.SetSpeechEnabled(true); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadKeepsToken(t *testing.T) {
	_, _, mgr := newFixture(t, session.Options{})
	first := mgr.Token()
	for i := 0; i < 2; i++ {
		if err := mgr.Load(context.Background(), sampleVTT); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if !mgr.IsCurrent(first) || mgr.IsCurrent("") {
		t.Fatal("reloading the same video should keep the context token")
	}
}

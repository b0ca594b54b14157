package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cuesync/internal/host"
	"cuesync/internal/services"
	"cuesync/internal/subtitles"
)

func TestFromTracksPrefersShowing(t *testing.T) {
	tracks := []host.TextTrack{
		{Kind: "subtitles", Mode: host.ModeHidden, Cues: []subtitles.Cue{{Start: 0, End: 1, Text: "hidden"}}},
		{Kind: "subtitles", Mode: host.ModeShowing, Cues: []subtitles.Cue{{Start: 1, End: 2.5, Text: "<i>shown</i>"}}},
	}
	text, ok := FromTracks(tracks)
	if !ok {
		t.Fatal("expected text")
	}
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nshown\n\n"
	if text != want {
		t.Fatalf("FromTracks = %q, want %q", text, want)
	}
}

func TestFromTracksFallsBackToFirstWithCues(t *testing.T) {
	tracks := []host.TextTrack{
		{Kind: "subtitles", Mode: host.ModeShowing},
		{Kind: "captions", Mode: host.ModeDisabled},
		{Kind: "captions", Mode: host.ModeDisabled, Cues: []subtitles.Cue{{Start: 0, End: 1, Text: "fallback"}}},
	}
	text, ok := FromTracks(tracks)
	if !ok || subtitles.Parse(text)[0].Text != "fallback" {
		t.Fatalf("unexpected result %q %v", text, ok)
	}
	if _, ok := FromTracks(nil); ok {
		t.Fatal("no tracks should yield nothing")
	}
}

func TestFromPlayerFetchesLinkedTrack(t *testing.T) {
	const body = "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nremote\n"
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/en.vtt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	player := host.NewPlayer("v", nil, []host.TrackElement{
		{Kind: "metadata", Src: srv.URL + "/meta.vtt"},
		{Kind: "captions", Src: srv.URL + "/en.vtt"},
	})
	e := New(srv.Client(), 0, nil)
	text, err := e.FromPlayer(context.Background(), player)
	if err != nil {
		t.Fatalf("FromPlayer: %v", err)
	}
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nremote\n\n"
	if text != want || hits != 1 {
		t.Fatalf("unexpected text %q hits %d", text, hits)
	}
}

func TestFromPlayerCanonicalisesLinkedTrack(t *testing.T) {
	const body = "WEBVTT\n\n1\n00:01.000 --> 00:02.000 align:start\n<v Bob><i>hello</i></v>\n\n" +
		"2\n00:02.500 --> 00:04.000\nsecond <b>line</b>\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	player := host.NewPlayer("v", nil, []host.TrackElement{{Kind: "subtitles", Src: srv.URL + "/en.vtt"}})
	text, err := New(srv.Client(), 0, nil).FromPlayer(context.Background(), player)
	if err != nil {
		t.Fatalf("FromPlayer: %v", err)
	}
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhello\n\n" +
		"00:00:02.500 --> 00:00:04.000\nsecond line\n\n"
	if text != want {
		t.Fatalf("FromPlayer = %q, want %q", text, want)
	}
}

func TestFromPlayerLinkedTrackWithoutCues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not subtitles</html>"))
	}))
	defer srv.Close()

	player := host.NewPlayer("v", nil, []host.TrackElement{{Kind: "captions", Src: srv.URL}})
	_, err := New(srv.Client(), 0, nil).FromPlayer(context.Background(), player)
	if !errors.Is(err, ErrNoSubtitles) {
		t.Fatalf("expected ErrNoSubtitles, got %v", err)
	}
}

func TestFromPlayerErrors(t *testing.T) {
	e := New(nil, 0, nil)
	_, err := e.FromPlayer(context.Background(), host.NewPlayer("v", nil, nil))
	if !errors.Is(err, ErrNoSubtitles) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNoSubtitles, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	player := host.NewPlayer("v", nil, []host.TrackElement{{Kind: "subtitles", Src: srv.URL}})
	_, err = New(srv.Client(), 0, nil).FromPlayer(context.Background(), player)
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}

package host

import (
	"context"
	"testing"
	"time"
)

func TestPlayerListeners(t *testing.T) {
	p := NewPlayer("v", nil, nil)
	var got []float64
	remove := p.OnTimeUpdate(func(t float64) { got = append(got, t) })
	p.Advance(1.5)
	remove()
	remove()
	p.Advance(2.5)
	if len(got) != 1 || got[0] != 1.5 {
		t.Fatalf("unexpected ticks %v", got)
	}
	if p.CurrentTime() != 2.5 {
		t.Fatalf("unexpected current time %v", p.CurrentTime())
	}
	if p.ListenerCount() != 0 {
		t.Fatal("listener not removed")
	}
}

func TestOverlayAttachDetach(t *testing.T) {
	p := NewPlayer("v", nil, nil)
	o := p.AttachOverlay()
	o.Render([]string{"one", "two"})
	o.Show()
	if o.Text() != "one\ntwo" || !o.Visible() {
		t.Fatalf("unexpected overlay state %q %v", o.Text(), o.Visible())
	}
	if len(p.Container().Overlays()) != 1 {
		t.Fatal("expected overlay in container")
	}
	o.Detach()
	o.Detach()
	if len(p.Container().Overlays()) != 0 {
		t.Fatal("expected container empty after detach")
	}
}

func TestPagePlayerSwap(t *testing.T) {
	page := NewPage("https://example.com/learn/a/lecture/b/c")
	if _, ok := page.Player(); ok {
		t.Fatal("new page has no player")
	}
	page.AttachPlayer(NewPlayer("v1", nil, nil))
	if _, ok := page.Player(); !ok {
		t.Fatal("expected player")
	}
	page.DetachPlayer()
	if _, ok := page.CurrentPlayer(); ok {
		t.Fatal("expected no player after detach")
	}
	page.SetDetails("Title", []string{"A", "B"})
	title, crumbs := page.Details()
	if title != "Title" || len(crumbs) != 2 {
		t.Fatalf("unexpected details %q %v", title, crumbs)
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	page := NewPage("https://example.com/one")
	w := NewWatcher(page, 5*time.Millisecond)
	if _, ok := w.Check(); ok {
		t.Fatal("no change yet")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan string, 1)
	go w.Run(ctx, func(_ context.Context, url string) { changes <- url })

	page.SetURL("https://example.com/two")
	select {
	case url := <-changes:
		if url != "https://example.com/two" {
			t.Fatalf("unexpected url %q", url)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not report navigation")
	}
}

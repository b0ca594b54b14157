package host

import (
	"context"
	"sync"
	"time"

	"cuesync/internal/session"
)

// Page is the in-memory host page.
type Page struct {
	mu          sync.Mutex
	url         string
	title       string
	breadcrumbs []string
	player      *Player
}

// NewPage creates a page at url with no player.
func NewPage(url string) *Page {
	return &Page{url: url}
}

// Player implements session.Host.
func (p *Page) Player() (session.Player, bool) {
	player, ok := p.CurrentPlayer()
	if !ok {
		return nil, false
	}
	return player, true
}

// CurrentPlayer returns the concrete player element.
func (p *Page) CurrentPlayer() (*Player, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player, p.player != nil
}

// AttachPlayer installs player, replacing any previous one.
func (p *Page) AttachPlayer(player *Player) {
	p.mu.Lock()
	p.player = player
	p.mu.Unlock()
}

// DetachPlayer removes the player, as a single-page app does mid-navigation.
func (p *Page) DetachPlayer() {
	p.mu.Lock()
	p.player = nil
	p.mu.Unlock()
}

// URL implements session.Host.
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// SetURL records a client-side navigation.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
}

// SetDetails records the page title and breadcrumb trail.
func (p *Page) SetDetails(title string, breadcrumbs []string) {
	p.mu.Lock()
	p.title = title
	p.breadcrumbs = append([]string(nil), breadcrumbs...)
	p.mu.Unlock()
}

// Details returns the page title and breadcrumb trail.
func (p *Page) Details() (string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, append([]string(nil), p.breadcrumbs...)
}

// Watcher polls a page's URL and reports changes.
type Watcher struct {
	page     *Page
	interval time.Duration

	mu   sync.Mutex
	last string
}

// NewWatcher creates a watcher that polls every interval.
func NewWatcher(page *Page, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{page: page, interval: interval, last: page.URL()}
}

// Check compares the current URL with the last one seen and returns the new
// URL when it changed.
func (w *Watcher) Check() (string, bool) {
	current := w.page.URL()
	w.mu.Lock()
	defer w.mu.Unlock()
	if current == w.last {
		return "", false
	}
	w.last = current
	return current, true
}

// Run polls until ctx ends, calling onChange for each new URL.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, url string)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if url, ok := w.Check(); ok {
				onChange(ctx, url)
			}
		}
	}
}

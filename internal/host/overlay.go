package host

import (
	"strings"
	"sync"
)

// Container holds the overlays attached next to a player.
type Container struct {
	mu       sync.Mutex
	children []*Overlay
}

func (c *Container) attach() *Overlay {
	o := &Overlay{parent: c}
	c.mu.Lock()
	c.children = append(c.children, o)
	c.mu.Unlock()
	return o
}

func (c *Container) remove(o *Overlay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, child := range c.children {
		if child == o {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// Overlays returns the attached overlays in attach order.
func (c *Container) Overlays() []*Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Overlay(nil), c.children...)
}

// Overlay is a plain-text subtitle element.
type Overlay struct {
	mu      sync.Mutex
	parent  *Container
	lines   []string
	visible bool
}

// Render replaces the displayed lines.
func (o *Overlay) Render(lines []string) {
	o.mu.Lock()
	o.lines = append([]string(nil), lines...)
	o.mu.Unlock()
}

// Show makes the overlay visible.
func (o *Overlay) Show() {
	o.mu.Lock()
	o.visible = true
	o.mu.Unlock()
}

// Hide hides the overlay without clearing its lines.
func (o *Overlay) Hide() {
	o.mu.Lock()
	o.visible = false
	o.mu.Unlock()
}

// Detach removes the overlay from its container. Detaching twice is a no-op.
func (o *Overlay) Detach() {
	o.mu.Lock()
	parent := o.parent
	o.parent = nil
	o.mu.Unlock()
	if parent != nil {
		parent.remove(o)
	}
}

// Lines returns the rendered lines.
func (o *Overlay) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lines...)
}

// Text returns the rendered lines joined by newlines.
func (o *Overlay) Text() string {
	return strings.Join(o.Lines(), "\n")
}

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Attached reports whether the overlay is still in a container.
func (o *Overlay) Attached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.parent != nil
}

package layers

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ivlev/skytour/internal/anim"
	"github.com/ivlev/skytour/internal/clock"
	"github.com/ivlev/skytour/internal/viewer"
)

// Cache maps source ids to lazily created layers. Entries live until Reset.
// It is not safe for concurrent use; all calls come from the scheduler
// goroutine.
type Cache struct {
	viewer    viewer.Viewer
	sched     clock.Scheduler
	interrupt *anim.Flag

	entries map[string]Layer
	order   []string // most recently foregrounded last
	sticky  []string
	active  string
}

// NewCache creates an empty cache. Fades check interrupt at every step.
func NewCache(v viewer.Viewer, sched clock.Scheduler, interrupt *anim.Flag) *Cache {
	return &Cache{
		viewer:    v,
		sched:     sched,
		interrupt: interrupt,
		entries:   make(map[string]Layer),
	}
}

// GetOrCreate returns the layer for id, creating it hidden on first use.
// An empty id yields nil.
func (c *Cache) GetOrCreate(id string) Layer {
	if id == "" {
		return nil
	}
	if l, ok := c.entries[id]; ok {
		return l
	}

	var l Layer
	if IsRaster(id) {
		l = &WholeLayer{id: id}
	} else {
		o, err := c.viewer.CreateOverlay(id)
		if err != nil {
			log.Printf("[!] Не удалось создать слой %s, используется целое изображение: %v", id, err)
			l = &WholeLayer{id: id}
		} else {
			o.SetOpacity(0)
			l = &TiledLayer{id: id, overlay: o}
		}
	}

	c.entries[id] = l
	return l
}

// BringToFront shows id on top: opacity 1 for tiled layers, a full redisplay
// for whole ones. Unknown ids yield nil.
func (c *Cache) BringToFront(id string) Layer {
	l, ok := c.entries[id]
	if !ok {
		return nil
	}

	switch l := l.(type) {
	case *TiledLayer:
		c.setOpacity(l, 1)
	case *WholeLayer:
		if err := c.viewer.DisplayRaster(l.id); err != nil {
			log.Printf("[!] Не удалось показать изображение %s: %v", l.id, err)
		}
	}

	c.moveToEnd(id)
	c.active = id
	return l
}

// Foreground creates id if needed and brings it to the front.
func (c *Cache) Foreground(id string) Layer {
	if c.GetOrCreate(id) == nil {
		return nil
	}
	return c.BringToFront(id)
}

func (c *Cache) moveToEnd(id string) {
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, id)
}

// SetOpacity sets a tiled layer's opacity at once, cancelling any fade on it.
func (c *Cache) SetOpacity(id string, v float64) {
	if l, ok := c.entries[id].(*TiledLayer); ok {
		c.setOpacity(l, v)
	}
}

func (c *Cache) setOpacity(l *TiledLayer, v float64) {
	c.supersede(l)
	l.overlay.SetOpacity(clamp01(v))
}

// Opacity returns the opacity of id: 0 for unknown ids, 1 for whole layers.
func (c *Cache) Opacity(id string) float64 {
	l, ok := c.entries[id]
	if !ok {
		return 0
	}
	return opacityOf(l)
}

// FadeOpacity animates a tiled layer from one opacity to another in eased
// steps. The end value is set exactly. A fade cut short by the interrupt
// flag snaps to the end value and reports interrupted; a fade replaced by a
// newer write reports interrupted without touching the layer. onDone may be
// nil and also fires for unknown or whole layers.
func (c *Cache) FadeOpacity(id string, from, to float64, d time.Duration, onDone func(interrupted bool)) {
	l, ok := c.entries[id].(*TiledLayer)
	if !ok {
		if onDone != nil {
			onDone(false)
		}
		return
	}

	from, to = clamp01(from), clamp01(to)
	c.supersede(l)
	l.overlay.SetOpacity(from)

	f := &fade{onDone: onDone}
	f.stepper = anim.NewStepper(c.sched, c.interrupt, d, anim.OpacitySteps,
		func(e float64) { l.overlay.SetOpacity(anim.Lerp(from, to, e)) },
		func(interrupted bool) {
			if l.fade == f {
				l.fade = nil
			}
			if f.onDone != nil {
				f.onDone(interrupted)
			}
		})
	l.fade = f
	f.stepper.Start()
}

// supersede stops the fade running on l. Its callback is still delivered,
// on the next scheduler turn, as interrupted.
func (c *Cache) supersede(l *TiledLayer) {
	f := l.fade
	if f == nil {
		return
	}
	l.fade = nil
	f.stepper.Stop()
	if f.onDone != nil {
		c.sched.AfterFunc(0, func() { f.onDone(true) })
	}
}

// Fading reports whether a fade is in progress on id.
func (c *Cache) Fading(id string) bool {
	l, ok := c.entries[id].(*TiledLayer)
	return ok && l.fade != nil
}

// HideOthers keeps current, every sticky layer and the background at
// opacity 1 and fades every other tiled layer to 0 over fadeOut. The
// background is backgroundHint, or the layer foregrounded before current
// when no hint is given.
func (c *Cache) HideOthers(current, backgroundHint string, fadeOut time.Duration) {
	keep := make(map[string]bool, len(c.sticky)+2)
	if current != "" {
		keep[current] = true
	}
	for _, id := range c.sticky {
		keep[id] = true
	}

	background := backgroundHint
	if background == "" {
		background = c.predecessor(current)
	}
	if background != "" {
		keep[background] = true
	}

	for _, id := range c.ids() {
		l, ok := c.entries[id].(*TiledLayer)
		if !ok {
			continue
		}
		if keep[id] {
			c.setOpacity(l, 1)
			continue
		}
		if fadeOut <= 0 || l.Opacity() == 0 {
			c.setOpacity(l, 0)
			continue
		}
		c.FadeOpacity(id, l.Opacity(), 0, fadeOut, nil)
	}
}

func (c *Cache) predecessor(id string) string {
	for i, o := range c.order {
		if o == id {
			if i > 0 {
				return c.order[i-1]
			}
			return ""
		}
	}
	return ""
}

// ids returns the cache keys in a stable order.
func (c *Cache) ids() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarkSticky adds id to the sticky set. Repeated calls are no-ops.
func (c *Cache) MarkSticky(id string) {
	if id == "" || c.IsSticky(id) {
		return
	}
	c.sticky = append(c.sticky, id)
}

func (c *Cache) IsSticky(id string) bool {
	for _, s := range c.sticky {
		if s == id {
			return true
		}
	}
	return false
}

// Sticky returns the sticky ids in the order they were marked.
func (c *Cache) Sticky() []string {
	return append([]string(nil), c.sticky...)
}

// Order returns the layer order, most recently foregrounded last.
func (c *Cache) Order() []string {
	return append([]string(nil), c.order...)
}

// Active is the id most recently brought to front.
func (c *Cache) Active() string { return c.active }

func (c *Cache) Len() int { return len(c.entries) }

// Reset hides and drops every layer and clears order, sticky set and active
// pointer. Running fades are stopped without callbacks.
func (c *Cache) Reset() {
	for _, id := range c.ids() {
		if l, ok := c.entries[id].(*TiledLayer); ok {
			if l.fade != nil {
				l.fade.stepper.Stop()
				l.fade = nil
			}
			l.overlay.SetOpacity(0)
		}
	}
	c.entries = make(map[string]Layer)
	c.order = nil
	c.sticky = nil
	c.active = ""
}

// Status dumps the cache for diagnostics.
func (c *Cache) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "слоёв: %d, активный: %q\n", len(c.entries), c.active)
	for _, id := range c.ids() {
		l := c.entries[id]
		kind := "tiled"
		if !l.Tiled() {
			kind = "whole"
		}
		flags := ""
		if c.IsSticky(id) {
			flags += " sticky"
		}
		if c.Fading(id) {
			flags += " fading"
		}
		fmt.Fprintf(&b, "  %-5s %4.2f %s%s\n", kind, opacityOf(l), id, flags)
	}
	fmt.Fprintf(&b, "  порядок: %s\n", strings.Join(c.order, " → "))
	return b.String()
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

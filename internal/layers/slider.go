package layers

import (
	"math"
	"path"
	"strings"
)

// exactWindow is how close to a notch the slider must be to show a single
// layer instead of a blend.
const exactWindow = 0.05

// SliderItem is one notch of the layer slider.
type SliderItem struct {
	ID    string
	Title string
}

// Slider switches between the tour's layers without moving the view,
// cross-blending neighbours at fractional positions.
type Slider struct {
	cache *Cache
	items []SliderItem
	pos   float64
}

// NewSlider pre-creates every distinct non-empty id at opacity 0 and shows
// the first one.
func NewSlider(c *Cache, items []SliderItem) *Slider {
	s := &Slider{cache: c}
	seen := make(map[string]bool)
	for _, it := range items {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if it.Title == "" {
			it.Title = Label(it.ID)
		}
		s.items = append(s.items, it)
		c.GetOrCreate(it.ID)
		c.SetOpacity(it.ID, 0)
	}
	if len(s.items) > 0 {
		c.SetOpacity(s.items[0].ID, 1)
	}
	return s
}

func (s *Slider) Len() int { return len(s.items) }

func (s *Slider) Position() float64 { return s.pos }

// Set moves the slider to v, clamped to [0, Len()-1].
func (s *Slider) Set(v float64) {
	n := len(s.items)
	if n == 0 {
		return
	}
	max := float64(n - 1)
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	s.pos = v

	lower := int(math.Floor(v))
	upper := int(math.Ceil(v))

	for _, it := range s.items {
		s.cache.SetOpacity(it.ID, 0)
	}

	if s.exact() {
		s.cache.SetOpacity(s.items[int(math.Round(v))].ID, 1)
		return
	}
	frac := v - float64(lower)
	s.cache.SetOpacity(s.items[lower].ID, 1-frac)
	s.cache.SetOpacity(s.items[upper].ID, frac)
}

// Step moves the slider by delta.
func (s *Slider) Step(delta float64) { s.Set(s.pos + delta) }

func (s *Slider) exact() bool {
	return math.Abs(s.pos-math.Round(s.pos)) < exactWindow || math.Floor(s.pos) == math.Ceil(s.pos)
}

// Label describes the current position: the layer title at a notch, or
// "lower → upper" while blending.
func (s *Slider) Label() string {
	if len(s.items) == 0 {
		return ""
	}
	if s.exact() {
		return s.items[int(math.Round(s.pos))].Title
	}
	lo := s.items[int(math.Floor(s.pos))]
	hi := s.items[int(math.Ceil(s.pos))]
	return Label(lo.ID) + " → " + Label(hi.ID)
}

// Label derives a short display name from a layer id.
func Label(id string) string {
	id = strings.TrimRight(id, "/")
	if strings.HasPrefix(id, "CDS/P/") {
		return strings.TrimPrefix(id, "CDS/P/")
	}
	base := path.Base(id)
	return strings.TrimSuffix(base, path.Ext(base))
}

package layers

import (
	"math"
	"sort"
)

// Band is one image of the wavelength slider.
type Band struct {
	Wavelength  float64 // nm
	ID          string
	Label       string
	Description string
}

// WavelengthSlider shows one image of a field at a time, picked by
// wavelength. Unlike Slider it never blends.
type WavelengthSlider struct {
	cache *Cache
	bands []Band
	cur   int
}

// NewWavelengthSlider sorts bands by wavelength, pre-creates their layers
// hidden and shows the shortest one. Bands without an id are dropped.
func NewWavelengthSlider(c *Cache, bands []Band) *WavelengthSlider {
	s := &WavelengthSlider{cache: c}
	for _, b := range bands {
		if b.ID == "" {
			continue
		}
		if b.Label == "" {
			b.Label = Label(b.ID)
		}
		s.bands = append(s.bands, b)
	}
	sort.SliceStable(s.bands, func(i, j int) bool { return s.bands[i].Wavelength < s.bands[j].Wavelength })

	for _, b := range s.bands {
		c.GetOrCreate(b.ID)
		c.SetOpacity(b.ID, 0)
	}
	s.show(0)
	return s
}

func (s *WavelengthSlider) Len() int { return len(s.bands) }

// Range returns the shortest and longest wavelength.
func (s *WavelengthSlider) Range() (lo, hi float64) {
	if len(s.bands) == 0 {
		return 0, 0
	}
	return s.bands[0].Wavelength, s.bands[len(s.bands)-1].Wavelength
}

// Current returns the visible band. ok is false for an empty slider.
func (s *WavelengthSlider) Current() (b Band, ok bool) {
	if len(s.bands) == 0 {
		return Band{}, false
	}
	return s.bands[s.cur], true
}

// Set shows the band nearest to nm. Ties go to the shorter wavelength.
func (s *WavelengthSlider) Set(nm float64) {
	if len(s.bands) == 0 || math.IsNaN(nm) {
		return
	}
	best := 0
	for i, b := range s.bands {
		if math.Abs(b.Wavelength-nm) < math.Abs(s.bands[best].Wavelength-nm) {
			best = i
		}
	}
	s.show(best)
}

// Step moves delta bands, clamped to the ends.
func (s *WavelengthSlider) Step(delta int) {
	if len(s.bands) == 0 {
		return
	}
	i := s.cur + delta
	if i < 0 {
		i = 0
	}
	if i > len(s.bands)-1 {
		i = len(s.bands) - 1
	}
	s.show(i)
}

// Hide sets every band to opacity 0.
func (s *WavelengthSlider) Hide() {
	for _, b := range s.bands {
		s.cache.SetOpacity(b.ID, 0)
	}
}

func (s *WavelengthSlider) show(i int) {
	if len(s.bands) == 0 {
		return
	}
	s.Hide()
	s.cur = i
	s.cache.SetOpacity(s.bands[i].ID, 1)
}

// Package tour loads tour descriptors and maps waypoint titles to shareable anchors.
package tour

import (
	"time"

	"github.com/ivlev/skytour/internal/coords"
)

// Tour is the ordered list of waypoints. Index 0 is the landing view.
type Tour struct {
	Title     string     `yaml:"title,omitempty" json:"title,omitempty"`
	Waypoints []Waypoint `yaml:"waypoints" json:"waypoints"`

	// Wavelengths are alternative images of the same field, switched by the
	// wavelength slider.
	Wavelengths []Wavelength `yaml:"wavelengths,omitempty" json:"wavelengths,omitempty"`
}

// Wavelength is one band of the wavelength slider. Wavelength is in nm.
type Wavelength struct {
	Wavelength  float64 `yaml:"wavelength" json:"wavelength"`
	URL         string  `yaml:"url" json:"url"`
	Label       string  `yaml:"label,omitempty" json:"label,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// Waypoint describes one stop of the tour. Loaded once and never mutated.
type Waypoint struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	RA       float64          `yaml:"ra" json:"ra"`
	Dec      float64          `yaml:"dec" json:"dec"`
	Galactic *coords.Galactic `yaml:"galacticCoords,omitempty" json:"galacticCoords,omitempty"`

	FoV           float64 `yaml:"fov" json:"fov"`
	TransitionFoV float64 `yaml:"transition_fov,omitempty" json:"transition_fov,omitempty"` // 0 = config default

	URL       string `yaml:"url,omitempty" json:"url,omitempty"`
	FadeLayer string `yaml:"fade_layer,omitempty" json:"fade_layer,omitempty"`

	ZoomOutTime    Timing `yaml:"zoom_out_time,omitempty" json:"zoom_out_time,omitempty"`
	TransitionTime Timing `yaml:"transition_time,omitempty" json:"transition_time,omitempty"`
	ZoomInTime     Timing `yaml:"zoom_in_time,omitempty" json:"zoom_in_time,omitempty"`
	FadeOutTime    Timing `yaml:"fade_out_time,omitempty" json:"fade_out_time,omitempty"`
	FadeDelay      Timing `yaml:"fade_delay,omitempty" json:"fade_delay,omitempty"`
	FadeInTime     Timing `yaml:"fade_in_time,omitempty" json:"fade_in_time,omitempty"`
	PauseTime      Timing `yaml:"pause_time,omitempty" json:"pause_time,omitempty"`             // ms
	EndOfTourPause Timing `yaml:"end_of_tour_pause,omitempty" json:"end_of_tour_pause,omitempty"` // ms

	FadeEnabled   bool `yaml:"fade_enabled,omitempty" json:"fade_enabled,omitempty"`
	IsSticky      bool `yaml:"is_sticky,omitempty" json:"is_sticky,omitempty"`
	HideDuringPan bool `yaml:"hide_during_pan,omitempty" json:"hide_during_pan,omitempty"`
}

// TimingKey names one of the per-waypoint timing overrides.
type TimingKey string

const (
	KeyZoomOut        TimingKey = "zoom_out_time"
	KeyTransition     TimingKey = "transition_time"
	KeyZoomIn         TimingKey = "zoom_in_time"
	KeyFadeOut        TimingKey = "fade_out_time"
	KeyFadeDelay      TimingKey = "fade_delay"
	KeyFadeIn         TimingKey = "fade_in_time"
	KeyPause          TimingKey = "pause_time"
	KeyEndOfTourPause TimingKey = "end_of_tour_pause"
)

// Unit is the time unit the descriptor uses for the key. Pauses are given in
// milliseconds, everything else in seconds.
func (k TimingKey) Unit() time.Duration {
	switch k {
	case KeyPause, KeyEndOfTourPause:
		return time.Millisecond
	default:
		return time.Second
	}
}

// Position returns the equatorial target of the waypoint.
func (w *Waypoint) Position() coords.Equatorial {
	return coords.Equatorial{RA: w.RA, Dec: w.Dec}
}

// Timing returns the raw override for key.
func (w *Waypoint) Timing(key TimingKey) Timing {
	switch key {
	case KeyZoomOut:
		return w.ZoomOutTime
	case KeyTransition:
		return w.TransitionTime
	case KeyZoomIn:
		return w.ZoomInTime
	case KeyFadeOut:
		return w.FadeOutTime
	case KeyFadeDelay:
		return w.FadeDelay
	case KeyFadeIn:
		return w.FadeInTime
	case KeyPause:
		return w.PauseTime
	case KeyEndOfTourPause:
		return w.EndOfTourPause
	}
	return Timing{}
}

// Override converts the override for key to a duration. ok is false when the
// descriptor does not set it.
func (w *Waypoint) Override(key TimingKey) (d time.Duration, ok bool) {
	t := w.Timing(key)
	if !t.Set {
		return 0, false
	}
	return time.Duration(t.Value * float64(key.Unit())), true
}

// Len returns the number of waypoints.
func (t *Tour) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Waypoints)
}

// Clamp maps i into [0, Len()-1].
func (t *Tour) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if n := t.Len(); i >= n {
		return n - 1
	}
	return i
}

// At returns the waypoint at the clamped index.
func (t *Tour) At(i int) *Waypoint {
	return &t.Waypoints[t.Clamp(i)]
}

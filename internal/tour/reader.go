package tour

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/skytour/internal/coords"
)

var (
	ErrEmptyTour       = errors.New("tour has no waypoints")
	ErrInvalidWaypoint = errors.New("invalid waypoint")
)

// WriteTour writes a tour to a YAML file
func WriteTour(t *Tour, path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadTour reads a tour descriptor. JSON files (the format the web tours ship
// with) and YAML files are both accepted; the format follows the extension.
func ReadTour(path string) (*Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes a descriptor from memory.
func Parse(data []byte, isJSON bool) (*Tour, error) {
	var t Tour
	if isJSON {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	}
	return &t, nil
}

// Load reads and prepares a tour: galactic targets are converted, layer ids
// are resolved against baseURL and the sequence is validated.
func Load(path, baseURL string, conv coords.Converter) (*Tour, error) {
	t, err := ReadTour(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тура %s: %w", path, err)
	}
	if err := t.Prepare(baseURL, conv); err != nil {
		return nil, fmt.Errorf("тур %s: %w", path, err)
	}
	return t, nil
}

// Prepare finishes a freshly decoded tour in place.
func (t *Tour) Prepare(baseURL string, conv coords.Converter) error {
	if t.Len() == 0 {
		return ErrEmptyTour
	}

	for i := range t.Waypoints {
		wp := &t.Waypoints[i]
		if wp.FoV <= 0 {
			return fmt.Errorf("%w %d (%q): fov must be > 0", ErrInvalidWaypoint, i, wp.Title)
		}
		if wp.TransitionFoV < 0 {
			log.Printf("[!] Точка %d (%q): transition_fov < 0 игнорируется", i, wp.Title)
			wp.TransitionFoV = 0
		}
		if wp.Galactic != nil {
			eq := coords.Resolve(conv, *wp.Galactic)
			wp.RA, wp.Dec = eq.RA, eq.Dec
		}
		wp.URL = ResolveURL(baseURL, wp.URL)
		wp.FadeLayer = ResolveURL(baseURL, wp.FadeLayer)
	}

	bands := t.Wavelengths[:0]
	for _, w := range t.Wavelengths {
		if w.URL == "" || math.IsNaN(w.Wavelength) || math.IsInf(w.Wavelength, 0) {
			log.Printf("[!] Слой длины волны %q без url или с неверной длиной волны пропущен", w.Label)
			continue
		}
		if w.Label == "" {
			w.Label = fmt.Sprintf("%g nm", w.Wavelength)
		}
		w.URL = ResolveURL(baseURL, w.URL)
		bands = append(bands, w)
	}
	t.Wavelengths = bands
	return nil
}

// Package viewer defines the sky-viewer contract the engine drives and ships
// two implementations: an in-memory Recorder and a tcell terminal viewer.
package viewer

import (
	"errors"

	"github.com/ivlev/skytour/internal/coords"
)

// ErrRejected is returned when the viewer refuses to create a layer.
var ErrRejected = errors.New("viewer rejected layer")

// Overlay is a tiled image layer owned by the viewer.
type Overlay interface {
	SetOpacity(v float64) // clamped to [0,1]
	Opacity() float64
}

// Viewer is the pannable, zoomable sky view.
type Viewer interface {
	SetFoV(fov float64)
	FoV() float64
	GotoRaDec(ra, dec float64)
	Position() coords.Equatorial
	CreateOverlay(id string) (Overlay, error)
	// DisplayRaster replaces the whole-image background with id.
	DisplayRaster(id string) error
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package layers caches the image layers a tour shows and controls their
// display order and opacity.
package layers

import (
	"path"
	"strings"

	"github.com/ivlev/skytour/internal/anim"
	"github.com/ivlev/skytour/internal/viewer"
)

// Layer is either a *TiledLayer or a *WholeLayer.
type Layer interface {
	ID() string
	Tiled() bool
}

// TiledLayer is a viewer overlay with its own opacity.
type TiledLayer struct {
	id      string
	overlay viewer.Overlay
	fade    *fade
}

func (l *TiledLayer) ID() string       { return l.id }
func (l *TiledLayer) Tiled() bool      { return true }
func (l *TiledLayer) Opacity() float64 { return l.overlay.Opacity() }

// WholeLayer is a single raster image shown by replacing the viewer's
// background; it has no opacity of its own.
type WholeLayer struct {
	id string
}

func (l *WholeLayer) ID() string  { return l.id }
func (l *WholeLayer) Tiled() bool { return false }

type fade struct {
	stepper *anim.Stepper
	onDone  func(interrupted bool)
}

var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsRaster reports whether id names a single image rather than a tiled
// survey.
func IsRaster(id string) bool {
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	return rasterExtensions[strings.ToLower(path.Ext(id))]
}

// opacityOf returns the current opacity of l, 1 for whole layers.
func opacityOf(l Layer) float64 {
	if t, ok := l.(*TiledLayer); ok {
		return t.Opacity()
	}
	return 1
}

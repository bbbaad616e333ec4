// Package source inspects local whole-image rasters referenced by a tour.
package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/skytour/internal/layers"
	"github.com/ivlev/skytour/internal/tour"
)

// RasterInfo describes one decoded raster header.
type RasterInfo struct {
	Path   string
	Format string
	Width  int
	Height int
}

func (r RasterInfo) String() string {
	return fmt.Sprintf("%s %dx%d (%s)", filepath.Base(r.Path), r.Width, r.Height, r.Format)
}

// Probe reads only the header of the raster at path.
func Probe(path string) (RasterInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return RasterInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return RasterInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return RasterInfo{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// isLocal reports whether id names a raster file on disk rather than a
// remote image or a tiled survey.
func isLocal(id string) bool {
	if !layers.IsRaster(id) {
		return false
	}
	return !strings.HasPrefix(id, "http://") && !strings.HasPrefix(id, "https://")
}

// ProbeTour probes every distinct local layer of t, resolving relative
// paths against dir. Unreadable rasters are logged and skipped; the viewer
// will degrade them on its own.
func ProbeTour(t *tour.Tour, dir string) []RasterInfo {
	seen := make(map[string]bool)
	var paths []string
	for i := range t.Waypoints {
		wp := &t.Waypoints[i]
		for _, id := range []string{wp.URL, wp.FadeLayer} {
			if !isLocal(id) || seen[id] {
				continue
			}
			seen[id] = true
			if !filepath.IsAbs(id) {
				id = filepath.Join(dir, id)
			}
			paths = append(paths, id)
		}
	}
	sort.Strings(paths)

	var infos []RasterInfo
	for _, p := range paths {
		info, err := Probe(p)
		if err != nil {
			log.Printf("[!] Не удалось прочитать растр: %v", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

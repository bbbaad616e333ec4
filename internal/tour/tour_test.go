package tour

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/skytour/internal/coords"
)

const sampleJSON = `{
  "waypoints": [
    {
      "title": "Galactic Center",
      "galacticCoords": {"lon": 359.944, "lat": -0.046},
      "fov": 2.0,
      "url": "hips/2mass/"
    },
    {
      "title": "Orion Nebula!",
      "ra": 83.82, "dec": -5.39,
      "fov": 1.5,
      "url": "CDS/P/DSS2/color",
      "zoom_out_time": 0,
      "transition_time": "3.5",
      "pause_time": 4000,
      "fade_in_time": -1,
      "is_sticky": true
    },
    {
      "title": "  Sgr  B2 -- core ",
      "ra": 266.835, "dec": -28.385,
      "fov": 0.3,
      "url": "https://example.org/sgrb2.png",
      "fade_layer": "overlays/glow/",
      "end_of_tour_pause": "soon",
      "fade_enabled": true
    }
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "tour.json", sampleJSON)

	tr, err := Load(path, "https://sky.example/", coords.J2000{})
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())

	gc := tr.At(0)
	assert.InDelta(t, 266.4168, gc.RA, 1e-9)
	assert.InDelta(t, -29.0078, gc.Dec, 1e-9)
	assert.Equal(t, "https://sky.example/hips/2mass/", gc.URL)

	orion := tr.At(1)
	assert.Equal(t, "CDS/P/DSS2/color", orion.URL)
	assert.True(t, orion.IsSticky)

	d, ok := orion.Override(KeyZoomOut)
	assert.True(t, ok, "explicit zero is a value")
	assert.Equal(t, time.Duration(0), d)

	d, ok = orion.Override(KeyTransition)
	assert.True(t, ok)
	assert.Equal(t, 3500*time.Millisecond, d)

	d, ok = orion.Override(KeyPause)
	assert.True(t, ok)
	assert.Equal(t, 4*time.Second, d)

	_, ok = orion.Override(KeyFadeIn)
	assert.False(t, ok, "negative override is dropped")

	_, ok = orion.Override(KeyZoomIn)
	assert.False(t, ok)

	sgr := tr.At(2)
	assert.Equal(t, "https://example.org/sgrb2.png", sgr.URL)
	assert.Equal(t, "https://sky.example/overlays/glow/", sgr.FadeLayer)
	_, ok = sgr.Override(KeyEndOfTourPause)
	assert.False(t, ok, "non-numeric override is dropped")
}

func TestWriteReadYAMLRoundTrip(t *testing.T) {
	src := &Tour{
		Title: "test",
		Waypoints: []Waypoint{
			{Title: "A", RA: 10, Dec: 20, FoV: 1, ZoomInTime: Seconds(0)},
			{Title: "B", RA: 11, Dec: 21, FoV: 2, PauseTime: Seconds(1500), FadeEnabled: true},
		},
	}

	path := filepath.Join(t.TempDir(), "tour.yaml")
	require.NoError(t, WriteTour(src, path))

	got, err := ReadTour(path)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestLoadWavelengths(t *testing.T) {
	path := writeFile(t, "bands.yaml", `
waypoints:
  - {title: M31, ra: 10.68, dec: 41.27, fov: 3, url: hips/dss/}
wavelengths:
  - {wavelength: 2200, url: hips/2mass/, label: K band, description: Old stars}
  - {wavelength: 650, url: CDS/P/DSS2/red}
  - {wavelength: 21, label: missing url}
`)
	tr, err := Load(path, "https://sky.example", coords.J2000{})
	require.NoError(t, err)

	assert.Equal(t, []Wavelength{
		{Wavelength: 2200, URL: "https://sky.example/hips/2mass/", Label: "K band", Description: "Old stars"},
		{Wavelength: 650, URL: "CDS/P/DSS2/red", Label: "650 nm"},
	}, tr.Wavelengths)
}

func TestPrepareRejectsBadTours(t *testing.T) {
	empty := &Tour{}
	assert.ErrorIs(t, empty.Prepare("", nil), ErrEmptyTour)

	bad := &Tour{Waypoints: []Waypoint{{Title: "zero", FoV: 0}}}
	assert.ErrorIs(t, bad.Prepare("", nil), ErrInvalidWaypoint)
}

func TestClamp(t *testing.T) {
	tr := &Tour{Waypoints: make([]Waypoint, 3)}
	assert.Equal(t, 0, tr.Clamp(-4))
	assert.Equal(t, 2, tr.Clamp(2))
	assert.Equal(t, 2, tr.Clamp(17))
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Orion Nebula", "orion-nebula"},
		{"Orion Nebula!", "orion-nebula"},
		{"  Sgr  B2 -- core ", "sgr-b2-core"},
		{"M31: Andromeda (Galaxy)", "m31-andromeda-galaxy"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Anchor(tt.title), "title=%q", tt.title)
	}
}

func TestIndexForAnchor(t *testing.T) {
	tr := &Tour{Waypoints: []Waypoint{
		{Title: "Galactic Center"},
		{Title: "Orion Nebula"},
	}}

	assert.Equal(t, 1, tr.IndexForAnchor("orion-nebula"))
	assert.Equal(t, 1, tr.IndexForAnchor("#orion-nebula"))
	assert.Equal(t, -1, tr.IndexForAnchor("Orion-Nebula"))
	assert.Equal(t, -1, tr.IndexForAnchor("crab"))
	assert.Equal(t, -1, tr.IndexForAnchor(""))
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "", ResolveURL("https://a/", ""))
	assert.Equal(t, "http://x/y.png", ResolveURL("https://a/", "http://x/y.png"))
	assert.Equal(t, "CDS/P/2MASS/color", ResolveURL("https://a/", "CDS/P/2MASS/color"))
	assert.Equal(t, "https://a/img/m42.jpg", ResolveURL("https://a/", "img/m42.jpg"))
	assert.Equal(t, "https://a/img/m42.jpg", ResolveURL("https://a/", "https://a/img/m42.jpg"))
	assert.Equal(t, "img/m42.jpg", ResolveURL("", "img/m42.jpg"))
}

func TestFindLatestTour(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.json", "b.yaml", "c.yml", "notes.txt"}
	for i, f := range files {
		p := filepath.Join(dir, f)
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0644))
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, modTime, modTime))
	}

	latest, err := FindLatestTour(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "c.yml"), latest)

	_, err = FindLatestTour(t.TempDir())
	assert.Error(t, err)
}

package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlider(t *testing.T) {
	f := newFixture()
	s := NewSlider(f.cache, []SliderItem{
		{ID: "CDS/P/2MASS/color", Title: "Infrared"},
		{ID: ""},
		{ID: "hips/radio/"},
		{ID: "CDS/P/2MASS/color", Title: "dup"},
		{ID: "hips/xray/", Title: "X-ray"},
	})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1.0, f.opacity(t, "CDS/P/2MASS/color"))
	assert.Equal(t, 0.0, f.opacity(t, "hips/radio/"))
	assert.Equal(t, 0.0, f.opacity(t, "hips/xray/"))
	assert.Equal(t, "Infrared", s.Label())

	s.Set(1.25)
	assert.Equal(t, 0.0, f.opacity(t, "CDS/P/2MASS/color"))
	assert.InDelta(t, 0.75, f.opacity(t, "hips/radio/"), 1e-12)
	assert.InDelta(t, 0.25, f.opacity(t, "hips/xray/"), 1e-12)
	assert.Equal(t, "radio → xray", s.Label())

	s.Set(1.97)
	assert.Equal(t, 0.0, f.opacity(t, "hips/radio/"))
	assert.Equal(t, 1.0, f.opacity(t, "hips/xray/"))
	assert.Equal(t, "X-ray", s.Label())

	s.Set(12)
	assert.Equal(t, 2.0, s.Position())
	s.Step(-2)
	assert.Equal(t, 0.0, s.Position())
	assert.Equal(t, 1.0, f.opacity(t, "CDS/P/2MASS/color"))
	assert.Equal(t, "radio", s.items[1].Title)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "DSS2/color", Label("CDS/P/DSS2/color"))
	assert.Equal(t, "m42", Label("https://example.org/img/m42.jpg"))
	assert.Equal(t, "2mass", Label("https://sky.example/hips/2mass/"))
}

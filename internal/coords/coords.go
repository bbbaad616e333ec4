// Package coords converts between the galactic and equatorial (J2000) frames
// used by tour descriptors and formats sky positions for display.
package coords

import (
	"fmt"
	"log"
	"math"
	"strings"
)

// Equatorial is a J2000 position in degrees.
type Equatorial struct {
	RA  float64 `yaml:"ra" json:"ra"`
	Dec float64 `yaml:"dec" json:"dec"`
}

// Galactic is a galactic position in degrees.
type Galactic struct {
	Lon float64 `yaml:"lon" json:"lon"`
	Lat float64 `yaml:"lat" json:"lat"`
}

// Converter is the coordinate-conversion collaborator.
type Converter interface {
	GalacticToEquatorial(g Galactic) (Equatorial, error)
}

// Distance is the Euclidean distance in the (RA, Dec) plane. It is only an
// approximation, good enough at the fields of view a tour works with.
func Distance(a, b Equatorial) float64 {
	dRA := b.RA - a.RA
	dDec := b.Dec - a.Dec
	return math.Sqrt(dRA*dRA + dDec*dDec)
}

type reference struct {
	name string
	gal  Galactic
	eq   Equatorial
}

// Known galactic-centre anchors with trusted conversions.
var references = []reference{
	{name: "Sgr A*", gal: Galactic{Lon: 359.944, Lat: -0.046}, eq: Equatorial{RA: 266.4168, Dec: -29.0078}},
	{name: "Sgr B2", gal: Galactic{Lon: 0.6667, Lat: -0.0362}, eq: Equatorial{RA: 266.8350, Dec: -28.3853}},
	{name: "MUBLO", gal: Galactic{Lon: 0.02467, Lat: -0.0727}, eq: Equatorial{RA: 266.4906, Dec: -28.9530}},
}

// Linear conversion factors around the galactic centre.
const (
	raPerLon  = 0.63
	decPerLat = 1.62
	raPerLat  = 0.0
	decPerLon = -1.05
)

// Resolve converts g to equatorial coordinates. An exact reference-point
// match wins, then conv, and if conv is nil or fails the position is
// interpolated from the nearest reference point.
func Resolve(conv Converter, g Galactic) Equatorial {
	for _, ref := range references {
		if math.Abs(g.Lon-ref.gal.Lon) < 0.001 && math.Abs(g.Lat-ref.gal.Lat) < 0.001 {
			return ref.eq
		}
	}

	if conv != nil {
		eq, err := conv.GalacticToEquatorial(g)
		if err == nil {
			return eq
		}
		log.Printf("[!] Не удалось пересчитать координаты (%.4f, %.4f), используется интерполяция: %v", g.Lon, g.Lat, err)
	}

	return Interpolate(g)
}

// Interpolate estimates the equatorial position of g from the closest
// reference point, handling longitude wrap-around at 0/360.
func Interpolate(g Galactic) Equatorial {
	closest := references[0]
	minDist := math.MaxFloat64
	for _, ref := range references {
		d := math.Hypot(g.Lon-ref.gal.Lon, g.Lat-ref.gal.Lat)
		if d < minDist {
			minDist = d
			closest = ref
		}
	}

	dLon := g.Lon - closest.gal.Lon
	if math.Abs(dLon) > 180 {
		if dLon > 0 {
			dLon -= 360
		} else {
			dLon += 360
		}
	}
	dLat := g.Lat - closest.gal.Lat

	return Equatorial{
		RA:  closest.eq.RA + dLon*raPerLon + dLat*raPerLat,
		Dec: closest.eq.Dec + dLon*decPerLon + dLat*decPerLat,
	}
}

// FormatRA renders RA degrees as "hhh mmm ss.ss".
func FormatRA(deg float64) string {
	hours := math.Mod(deg/15, 24)
	if hours < 0 {
		hours += 24
	}
	h, m, s := sexagesimal(hours)
	return fmt.Sprintf("%02dh %02dm %04.1fs", h, m, s)
}

// FormatDec renders Dec degrees as "±dd° mm' ss.s\"".
func FormatDec(deg float64) string {
	sign := ""
	if deg < 0 {
		sign = "-"
	}
	d, m, s := sexagesimal(math.Abs(deg))
	return fmt.Sprintf("%s%02d° %02d' %04.1f\"", sign, d, m, s)
}

// FormatPosition renders a position for status lines.
func FormatPosition(p Equatorial) string {
	return strings.Join([]string{FormatRA(p.RA), FormatDec(p.Dec)}, "  ")
}

func sexagesimal(v float64) (int, int, float64) {
	primary := math.Floor(v)
	minDecimal := (v - primary) * 60
	minutes := math.Floor(minDecimal)
	seconds := (minDecimal - minutes) * 60
	// keep "60.0s" from showing up after rounding
	if math.Round(seconds*10) >= 600 {
		seconds = 0
		minutes++
		if minutes >= 60 {
			minutes = 0
			primary++
		}
	}
	return int(primary), int(minutes), seconds
}

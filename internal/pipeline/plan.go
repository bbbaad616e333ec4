// Package pipeline runs the animated hop between two waypoints: zoom out,
// pan, zoom in, layer reveal and the optional flash cycle.
package pipeline

import (
	"math"
	"time"

	"github.com/ivlev/skytour/internal/coords"
	"github.com/ivlev/skytour/internal/timing"
	"github.com/ivlev/skytour/internal/tour"
)

// Phase is one stage of a transition.
type Phase int

const (
	Idle Phase = iota
	ZoomOut
	Pan
	ZoomIn
	Reveal
	FlashOut
	FlashHold
	FlashIn
	Done
)

var phaseNames = [...]string{"idle", "zoom-out", "pan", "zoom-in", "reveal", "flash-out", "flash-hold", "flash-in", "done"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Options are the defaults used when a waypoint has no override.
type Options struct {
	TransitionFoV float64
	NearThreshold float64

	ZoomOut    time.Duration
	Transition time.Duration
	ZoomIn     time.Duration
	HideFade   time.Duration
	RevealFade time.Duration
	FlashOut   time.Duration
	FlashHold  time.Duration
	FlashIn    time.Duration
}

func DefaultOptions() Options {
	return Options{
		TransitionFoV: 5.0,
		NearThreshold: 0.2,
		ZoomOut:       2 * time.Second,
		Transition:    2 * time.Second,
		ZoomIn:        2 * time.Second,
		HideFade:      500 * time.Millisecond,
		RevealFade:    500 * time.Millisecond,
		FlashOut:      1500 * time.Millisecond,
		FlashHold:     500 * time.Millisecond,
		FlashIn:       1500 * time.Millisecond,
	}
}

// Step is a planned phase with its resolved duration.
type Step struct {
	Phase    Phase
	Duration time.Duration
}

// Plan is the resolved phase list of one transition.
type Plan struct {
	Near          bool
	Distance      float64
	TransitionFoV float64
	Steps         []Step
}

// Duration is the sum of every planned phase.
func (p Plan) Duration() time.Duration {
	var d time.Duration
	for _, s := range p.Steps {
		d += s.Duration
	}
	return d
}

// Phases lists the planned phases in order.
func (p Plan) Phases() []Phase {
	out := make([]Phase, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Phase
	}
	return out
}

// makePlan resolves the phase list for a hop from position from to to.
func makePlan(opts Options, res *timing.Resolver, from coords.Equatorial, to *tour.Waypoint) Plan {
	p := Plan{
		Distance:      coords.Distance(from, to.Position()),
		TransitionFoV: to.TransitionFoV,
	}
	if p.TransitionFoV <= 0 {
		p.TransitionFoV = opts.TransitionFoV
	}
	p.Near = p.Distance < opts.NearThreshold

	if p.Near {
		p.Steps = append(p.Steps,
			Step{Pan, res.Resolve(to, tour.KeyTransition, opts.Transition)},
			Step{ZoomIn, res.Resolve(to, tour.KeyTransition, opts.Transition)},
		)
	} else {
		p.Steps = append(p.Steps,
			Step{ZoomOut, res.Resolve(to, tour.KeyZoomOut, opts.ZoomOut)},
			Step{Pan, res.Resolve(to, tour.KeyTransition, opts.Transition)},
			Step{ZoomIn, res.Resolve(to, tour.KeyZoomIn, opts.ZoomIn)},
		)
	}

	if to.URL != "" {
		p.Steps = append(p.Steps, Step{Reveal, res.Resolve(to, tour.KeyFadeIn, opts.RevealFade)})
		if to.FadeEnabled {
			p.Steps = append(p.Steps,
				Step{FlashOut, res.Resolve(to, tour.KeyFadeOut, opts.FlashOut)},
				Step{FlashHold, res.Resolve(to, tour.KeyFadeDelay, opts.FlashHold)},
				Step{FlashIn, res.Resolve(to, tour.KeyFadeIn, opts.FlashIn)},
			)
		}
	}
	return p
}

func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

package pipeline

import (
	"log"
	"math"
	"time"

	"github.com/ivlev/skytour/internal/anim"
	"github.com/ivlev/skytour/internal/clock"
	"github.com/ivlev/skytour/internal/layers"
	"github.com/ivlev/skytour/internal/timing"
	"github.com/ivlev/skytour/internal/tour"
	"github.com/ivlev/skytour/internal/viewer"
)

// Result is reported once per transition.
type Result struct {
	Waypoint    *tour.Waypoint
	Plan        Plan
	Interrupted bool
}

// Pipeline runs one transition at a time. Every step checks the shared
// interrupt flag; when it is set the transition snaps to its target.
type Pipeline struct {
	viewer    viewer.Viewer
	cache     *layers.Cache
	timing    *timing.Resolver
	interrupt *anim.Flag
	sched     clock.Scheduler
	opts      Options

	run *run

	// OnPhase, if set, is called as each phase starts.
	OnPhase func(Phase, *tour.Waypoint)
}

type run struct {
	to         *tour.Waypoint
	plan       Plan
	step       int
	phase      Phase
	stepper    *anim.Stepper
	hold       clock.Timer
	onComplete func(Result)
	done       bool
}

func New(v viewer.Viewer, cache *layers.Cache, res *timing.Resolver, interrupt *anim.Flag, sched clock.Scheduler, opts Options) *Pipeline {
	return &Pipeline{
		viewer:    v,
		cache:     cache,
		timing:    res,
		interrupt: interrupt,
		sched:     sched,
		opts:      opts,
	}
}

// Plan resolves the phases a transition from from to to would run. A nil
// from plans from the viewer's current position.
func (p *Pipeline) Plan(from, to *tour.Waypoint) Plan {
	pos := p.viewer.Position()
	if from != nil {
		pos = from.Position()
	}
	return makePlan(p.opts, p.timing, pos, to)
}

// Active reports whether a transition is running.
func (p *Pipeline) Active() bool { return p.run != nil }

// Phase is the phase of the running transition, Idle if none.
func (p *Pipeline) Phase() Phase {
	if p.run == nil {
		return Idle
	}
	return p.run.phase
}

// Transition animates the viewer to to. onComplete fires exactly once, also
// when the transition is interrupted. A transition already running is
// snapped first.
func (p *Pipeline) Transition(from, to *tour.Waypoint, onComplete func(Result)) {
	p.Interrupt()

	r := &run{
		to:         to,
		plan:       p.Plan(from, to),
		step:       -1,
		onComplete: onComplete,
	}
	p.run = r

	hideFade := p.timing.Resolve(to, tour.KeyFadeOut, p.opts.HideFade)

	if to.URL != "" {
		p.cache.GetOrCreate(to.URL)
		if r.plan.Near || to.HideDuringPan {
			p.cache.SetOpacity(to.URL, 0)
		}
	}
	if to.FadeLayer != "" && to.FadeLayer != to.URL {
		p.cache.Foreground(to.FadeLayer)
		p.cache.HideOthers(to.FadeLayer, to.FadeLayer, hideFade)
	}

	log.Printf("[*] Переход к %q (%s, расстояние %.3f°, %v)", to.Title, pathName(r.plan.Near), r.plan.Distance, r.plan.Duration())
	p.next(r)
}

// Interrupt snaps the running transition to its target at once.
func (p *Pipeline) Interrupt() {
	if r := p.run; r != nil && !r.done {
		p.snap(r)
	}
}

func (p *Pipeline) next(r *run) {
	if r.done {
		return
	}
	if p.interrupt.IsSet() {
		p.snap(r)
		return
	}

	r.step++
	if r.step >= len(r.plan.Steps) {
		p.finish(r)
		return
	}

	s := r.plan.Steps[r.step]
	r.phase = s.Phase
	if p.OnPhase != nil {
		p.OnPhase(s.Phase, r.to)
	}

	switch s.Phase {
	case ZoomOut:
		from := p.camera()
		to := from
		to.FoV = math.Max(from.FoV, r.plan.TransitionFoV)
		p.animate(r, s.Duration, anim.FoVSteps, from, to)
	case ZoomIn:
		from := p.camera()
		to := from
		to.FoV = r.to.FoV
		p.animate(r, s.Duration, anim.FoVSteps, from, to)
	case Pan:
		from := p.camera()
		to := from
		to.RA, to.Dec = r.to.RA, r.to.Dec
		p.animate(r, s.Duration, anim.PositionSteps, from, to)
	case Reveal:
		id := r.to.URL
		p.cache.BringToFront(id)
		p.cache.HideOthers(id, r.to.FadeLayer, p.timing.Resolve(r.to, tour.KeyFadeOut, p.opts.HideFade))
		if r.to.IsSticky {
			p.cache.MarkSticky(id)
		}
		p.fade(r, id, 0, 1, s.Duration)
	case FlashOut:
		p.fade(r, p.cache.Active(), 1, 0, s.Duration)
	case FlashHold:
		r.hold = p.sched.AfterFunc(s.Duration, func() {
			r.hold = nil
			p.next(r)
		})
	case FlashIn:
		p.fade(r, p.cache.Active(), 0, 1, s.Duration)
	default:
		p.next(r)
	}
}

func (p *Pipeline) animate(r *run, d time.Duration, steps int, from, to anim.Camera) {
	apply := func(e float64) {
		p.setCamera(anim.InterpolateCamera(from, to, e))
	}
	r.stepper = anim.NewStepper(p.sched, p.interrupt, d, steps, apply, func(interrupted bool) {
		r.stepper = nil
		if r.done {
			return
		}
		if interrupted {
			p.snap(r)
			return
		}
		p.next(r)
	})
	r.stepper.Start()
}

func (p *Pipeline) fade(r *run, id string, from, to float64, d time.Duration) {
	p.cache.FadeOpacity(id, from, to, d, func(interrupted bool) {
		if r.done {
			return
		}
		if interrupted {
			p.snap(r)
			return
		}
		p.next(r)
	})
}

// snap jumps straight to the final state of r and completes it as
// interrupted.
func (p *Pipeline) snap(r *run) {
	if r.done {
		return
	}
	r.done = true
	step := 0
	if st := r.stepper; st != nil {
		step = st.Step()
		r.stepper = nil
		st.Snap()
	}
	if r.hold != nil {
		r.hold.Stop()
		r.hold = nil
	}

	p.setCamera(anim.Camera{RA: r.to.RA, Dec: r.to.Dec, FoV: r.to.FoV})
	if id := r.to.URL; id != "" {
		p.cache.GetOrCreate(id)
		p.cache.BringToFront(id)
		p.cache.HideOthers(id, r.to.FadeLayer, 0)
		if r.to.IsSticky {
			p.cache.MarkSticky(id)
		}
	}

	log.Printf("[!] Переход к %q прерван на фазе %s (шаг %d)", r.to.Title, r.phase, step)
	p.complete(r, true)
}

func (p *Pipeline) finish(r *run) {
	r.done = true
	log.Printf("[+++] Переход к %q завершён", r.to.Title)
	p.complete(r, false)
}

func (p *Pipeline) complete(r *run, interrupted bool) {
	r.phase = Done
	if p.run == r {
		p.run = nil
	}
	if p.OnPhase != nil {
		p.OnPhase(Done, r.to)
	}
	if r.onComplete != nil {
		r.onComplete(Result{Waypoint: r.to, Plan: r.plan, Interrupted: interrupted})
	}
}

// camera reads the viewer's current state; a non-finite FoV falls back to
// the transition FoV.
func (p *Pipeline) camera() anim.Camera {
	pos := p.viewer.Position()
	return anim.Camera{RA: pos.RA, Dec: pos.Dec, FoV: finite(p.viewer.FoV(), p.opts.TransitionFoV)}
}

func (p *Pipeline) setCamera(c anim.Camera) {
	p.viewer.SetFoV(c.FoV)
	p.viewer.GotoRaDec(c.RA, c.Dec)
}

func pathName(near bool) string {
	if near {
		return "рядом"
	}
	return "дальний"
}

// Package anim holds the animation primitives shared by the layer cache and
// the transition pipeline: easing, interpolation, the cooperative interrupt
// flag and the stepped tween driver.
package anim

import (
	"time"

	"github.com/ivlev/skytour/internal/clock"
)

// Flag is the cooperative cancellation signal checked by every scheduled
// animation step. It is only touched from the scheduler's goroutine.
type Flag struct {
	set bool
}

func (f *Flag) Set()        { f.set = true }
func (f *Flag) Clear()      { f.set = false }
func (f *Flag) IsSet() bool { return f != nil && f.set }

// Stepper drives a fixed number of eased steps on a scheduler.
//
// Each step calls Apply with the eased progress; the last step always calls it
// with exactly 1. If the interrupt flag is observed at a step boundary the
// stepper applies 1 at once and finishes with interrupted=true.
type Stepper struct {
	sched     clock.Scheduler
	interrupt *Flag
	steps     int
	interval  time.Duration
	apply     func(eased float64)
	onDone    func(interrupted bool)

	step     int
	timer    clock.Timer
	finished bool
}

// NewStepper prepares a stepper; nothing runs until Start.
func NewStepper(sched clock.Scheduler, interrupt *Flag, d time.Duration, steps int, apply func(float64), onDone func(bool)) *Stepper {
	if steps <= 0 {
		steps = 1
	}
	if d < 0 {
		d = 0
	}
	return &Stepper{
		sched:     sched,
		interrupt: interrupt,
		steps:     steps,
		interval:  d / time.Duration(steps),
		apply:     apply,
		onDone:    onDone,
	}
}

// Start schedules the first step. A zero duration completes synchronously.
func (s *Stepper) Start() {
	if s.interval <= 0 {
		s.apply(1)
		s.finish(s.interrupt.IsSet())
		return
	}
	s.timer = s.sched.AfterFunc(s.interval, s.tick)
}

func (s *Stepper) tick() {
	s.timer = nil
	if s.finished {
		return
	}
	if s.interrupt.IsSet() {
		s.apply(1)
		s.finish(true)
		return
	}

	s.step++
	s.apply(Ease(float64(s.step) / float64(s.steps)))
	if s.step >= s.steps {
		s.finish(false)
		return
	}
	s.timer = s.sched.AfterFunc(s.interval, s.tick)
}

// Step returns how many steps have run.
func (s *Stepper) Step() int { return s.step }

// Stop cancels the remaining steps without applying the endpoint and
// without calling onDone. Used when a newer writer takes over.
func (s *Stepper) Stop() {
	if s.finished {
		return
	}
	s.finished = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Snap cancels the remaining steps, applies the endpoint and finishes as
// interrupted.
func (s *Stepper) Snap() {
	if s.finished {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.apply(1)
	s.finish(true)
}

func (s *Stepper) finish(interrupted bool) {
	if s.finished {
		return
	}
	s.finished = true
	if s.onDone != nil {
		s.onDone(interrupted)
	}
}

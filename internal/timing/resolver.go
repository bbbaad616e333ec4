// Package timing turns per-waypoint overrides and the global playback speed
// into the durations the engine schedules.
package timing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ivlev/skytour/internal/tour"
)

var ErrInvalidSpeed = errors.New("speed multiplier must be a finite number > 0")

// Resolver applies the speed multiplier. A zero Resolver runs at speed 1.
type Resolver struct {
	speed float64
}

func NewResolver() *Resolver {
	return &Resolver{speed: 1}
}

// SetSpeed changes the multiplier. Invalid values leave it untouched.
func (r *Resolver) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	r.speed = speed
	return nil
}

func (r *Resolver) Speed() float64 {
	if r == nil || r.speed <= 0 {
		return 1
	}
	return r.speed
}

// Resolve returns the override for key (or def when absent) divided by the
// speed multiplier.
func (r *Resolver) Resolve(wp *tour.Waypoint, key tour.TimingKey, def time.Duration) time.Duration {
	d := def
	if wp != nil {
		if v, ok := wp.Override(key); ok {
			d = v
		}
	}
	return r.Scale(d)
}

// Scale divides a raw duration by the multiplier. The result is never
// negative.
func (r *Resolver) Scale(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	v := float64(d) / r.Speed()
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(v)
}

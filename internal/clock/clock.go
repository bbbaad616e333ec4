// Package clock provides the single-threaded timer facility the tour engine
// runs on. Every continuation (animation steps, auto-advance, countdown ticks)
// is a callback scheduled here; callbacks never run concurrently with each
// other.
package clock

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks on a shared logical thread.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

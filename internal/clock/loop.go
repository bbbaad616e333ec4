package clock

import (
	"context"
	"sync/atomic"
	"time"
)

// Loop is the production Scheduler: a single goroutine (the one calling Run)
// executes every timer callback and every posted function, one at a time.
type Loop struct {
	tasks chan func()
}

// NewLoop creates a Loop with a task queue of the given capacity.
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 64
	}
	return &Loop{tasks: make(chan func(), capacity)}
}

func (l *Loop) Now() time.Time { return time.Now() }

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (lt *loopTimer) Stop() bool {
	if lt.fired.Load() {
		return false
	}
	if !lt.stopped.CompareAndSwap(false, true) {
		return false
	}
	lt.t.Stop()
	return true
}

// AfterFunc schedules f on the loop goroutine after d. A Stop issued from the
// loop goroutine before f runs is always honoured, even if the underlying
// timer already expired and f is waiting in the queue.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			f()
		})
	})
	return lt
}

// Post queues f to run on the loop goroutine. It is safe to call from any
// goroutine; UI input handlers use it to reach the engine.
func (l *Loop) Post(f func()) {
	l.tasks <- f
}

// Run executes queued tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.tasks:
			f()
		}
	}
}

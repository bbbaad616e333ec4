package clock

import (
	"sort"
	"time"
)

// Manual is a virtual-time Scheduler. Time only moves when Advance or
// RunUntilIdle is called, and callbacks run synchronously inside those calls
// in (due time, scheduling order) order.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Time
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.m.remove(t)
	return true
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of scheduled callbacks that have not run yet.
func (m *Manual) Pending() int { return len(m.timers) }

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by other callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		t := m.next()
		if t == nil || t.at.After(target) {
			break
		}
		m.fire(t)
	}
	m.now = target
}

// RunUntilIdle runs callbacks in due order until none are left or limit
// callbacks have run. It returns the number of callbacks run.
func (m *Manual) RunUntilIdle(limit int) int {
	n := 0
	for n < limit {
		t := m.next()
		if t == nil {
			break
		}
		m.fire(t)
		n++
	}
	return n
}

// NextDue reports when the earliest pending callback is due.
func (m *Manual) NextDue() (time.Time, bool) {
	t := m.next()
	if t == nil {
		return time.Time{}, false
	}
	return t.at, true
}

func (m *Manual) fire(t *manualTimer) {
	m.remove(t)
	if t.at.After(m.now) {
		m.now = t.at
	}
	t.fired = true
	t.f()
}

func (m *Manual) next() *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

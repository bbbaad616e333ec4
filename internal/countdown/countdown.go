// Package countdown shows the time left until the next auto-advance. It only
// observes the schedule; it never triggers navigation.
package countdown

import (
	"log"
	"math"
	"time"

	"github.com/ivlev/skytour/internal/clock"
)

const DefaultPeriod = 100 * time.Millisecond

// Display renders the countdown.
type Display interface {
	ShowCountdown(secs int)
	HideCountdown()
}

// Countdown ticks on the scheduler until its end time passes or playback
// stops being active.
type Countdown struct {
	sched   clock.Scheduler
	display Display
	period  time.Duration
	active  func() bool

	end     time.Time
	timer   clock.Timer
	running bool
}

// New creates a stopped countdown. active reports whether playback is still
// on; nil means always.
func New(sched clock.Scheduler, display Display, period time.Duration, active func() bool) *Countdown {
	if period <= 0 {
		period = DefaultPeriod
	}
	if display == nil {
		display = nopDisplay{}
	}
	return &Countdown{
		sched:   sched,
		display: display,
		period:  period,
		active:  active,
	}
}

// Start counts down d from now.
func (c *Countdown) Start(d time.Duration) {
	c.cancel()
	if d < 0 {
		d = 0
	}
	c.end = c.sched.Now().Add(d)
	c.running = true
	c.Tick()
}

// Tick refreshes the display and schedules the next tick.
func (c *Countdown) Tick() {
	c.timer = nil
	if !c.running {
		return
	}
	rem := c.Remaining()
	if rem <= 0 || (c.active != nil && !c.active()) {
		c.Stop()
		return
	}
	c.display.ShowCountdown(int(math.Ceil(rem.Seconds())))
	c.timer = c.sched.AfterFunc(c.period, c.Tick)
}

// Stop cancels ticking and hides the display.
func (c *Countdown) Stop() {
	c.cancel()
	c.running = false
	c.display.HideCountdown()
}

func (c *Countdown) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Remaining is the time left, 0 when stopped.
func (c *Countdown) Remaining() time.Duration {
	if !c.running {
		return 0
	}
	rem := c.end.Sub(c.sched.Now())
	if rem < 0 {
		return 0
	}
	return rem
}

func (c *Countdown) Running() bool { return c.running }

// Rescale restarts a running countdown after a speed change so the time
// left becomes remaining * oldSpeed / newSpeed.
func (c *Countdown) Rescale(oldSpeed, newSpeed float64) {
	if !c.running || oldSpeed <= 0 || newSpeed <= 0 {
		return
	}
	rem := c.Remaining()
	c.Start(time.Duration(float64(rem) * oldSpeed / newSpeed))
}

type nopDisplay struct{}

func (nopDisplay) ShowCountdown(int) {}
func (nopDisplay) HideCountdown()    {}

// LogDisplay logs each whole second once. Used without a terminal.
type LogDisplay struct {
	last int
}

func (d *LogDisplay) ShowCountdown(secs int) {
	if secs == d.last {
		return
	}
	d.last = secs
	log.Printf("[*] Следующая точка через %d с", secs)
}

func (d *LogDisplay) HideCountdown() { d.last = 0 }

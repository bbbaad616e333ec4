package engine

import (
	"errors"
	"log"
	"time"

	"github.com/ivlev/skytour/internal/anim"
	"github.com/ivlev/skytour/internal/clock"
	"github.com/ivlev/skytour/internal/config"
	"github.com/ivlev/skytour/internal/countdown"
	"github.com/ivlev/skytour/internal/layers"
	"github.com/ivlev/skytour/internal/pipeline"
	"github.com/ivlev/skytour/internal/timing"
	"github.com/ivlev/skytour/internal/tour"
	"github.com/ivlev/skytour/internal/viewer"
)

var (
	ErrViewerUnavailable = errors.New("viewer unavailable")
	ErrNoWavelengths     = errors.New("tour has no wavelengths")
)

// State of the controller as seen by the UI.
type State int

const (
	Idle State = iota
	Transitioning
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Transitioning:
		return "transitioning"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Status is a snapshot for the UI.
type Status struct {
	Index     int
	Count     int
	Title     string
	Anchor    string
	State     State
	Playing   bool
	Loop      bool
	Speed     float64
	Phase     pipeline.Phase
	Remaining time.Duration
}

// Stats counts what happened during a session.
type Stats struct {
	Started     time.Time
	Transitions int
	Interrupted int
	Jumps       int
}

// Controller owns the tour position and playback state and drives the
// pipeline. All methods must be called on the scheduler goroutine.
type Controller struct {
	cfg    *config.Config
	tour   *tour.Tour
	sched  clock.Scheduler
	timing *timing.Resolver

	interrupt anim.Flag

	viewer    viewer.Viewer
	cache     *layers.Cache
	pipe      *pipeline.Pipeline
	countdown *countdown.Countdown
	slider    *layers.Slider
	bands     *layers.WavelengthSlider

	// band replaces the waypoint description while a wavelength is picked;
	// navigation clears it.
	band string

	index         int
	playing       bool
	paused        bool
	loop          bool
	transitioning bool

	// gen identifies the current navigation; completions of older ones are
	// ignored.
	gen      uint64
	advance  clock.Timer
	deadline time.Time

	onChange []func(Status)
	onPhase  []func(pipeline.Phase, int)

	stats Stats
}

// New creates a controller for t. It has no viewer until Attach.
func New(cfg *config.Config, t *tour.Tour, sched clock.Scheduler) *Controller {
	c := &Controller{
		cfg:    cfg,
		tour:   t,
		sched:  sched,
		timing: timing.NewResolver(),
		loop:   cfg.Loop,
	}
	if err := c.timing.SetSpeed(cfg.Speed); err != nil {
		log.Printf("[!] %v, используется скорость 1", err)
	}
	c.stats.Started = sched.Now()
	return c
}

// Attach connects the viewer, shows the initial survey and pre-creates the
// landing layer. display may be nil.
func (c *Controller) Attach(v viewer.Viewer, display countdown.Display) {
	c.viewer = v
	c.cache = layers.NewCache(v, c.sched, &c.interrupt)
	c.pipe = pipeline.New(v, c.cache, c.timing, &c.interrupt, c.sched, pipelineOptions(c.cfg))
	c.pipe.OnPhase = c.phaseStarted
	c.countdown = countdown.New(c.sched, display, c.cfg.CountdownPeriod, func() bool { return c.playing })
	c.slider = nil
	c.bands = nil

	first := c.tour.At(0)
	v.SetFoV(first.FoV)
	v.GotoRaDec(first.RA, first.Dec)
	c.showInitialSurvey()
	c.cache.GetOrCreate(first.URL)

	log.Printf("[*] Просмотрщик подключён, точек в туре: %d", c.tour.Len())
	c.notify()
}

func (c *Controller) showInitialSurvey() {
	if c.cfg.InitialSurvey == "" {
		return
	}
	c.cache.Foreground(tour.ResolveURL(c.cfg.BaseURL, c.cfg.InitialSurvey))
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		TransitionFoV: cfg.TransitionFoV,
		NearThreshold: cfg.NearThreshold,
		ZoomOut:       cfg.ZoomOut,
		Transition:    cfg.Transition,
		ZoomIn:        cfg.ZoomIn,
		HideFade:      cfg.HideFade,
		RevealFade:    cfg.RevealFade,
		FlashOut:      cfg.FlashOut,
		FlashHold:     cfg.FlashHold,
		FlashIn:       cfg.FlashIn,
	}
}

func (c *Controller) ready(op string) bool {
	if c.viewer == nil {
		log.Printf("[!] %s: %v", op, ErrViewerUnavailable)
		return false
	}
	return true
}

// GoTo animates to waypoint i (clamped).
func (c *Controller) GoTo(i int) error {
	if !c.ready("GoTo") {
		return ErrViewerUnavailable
	}
	gen := c.begin()

	c.index = c.tour.Clamp(i)
	to := c.tour.At(c.index)

	if c.index == c.tour.Len()-1 && !c.loop && c.playing {
		c.stopPlaying()
	}

	c.deadline = time.Time{}
	if c.playing {
		total := c.pipe.Plan(nil, to).Duration() + c.dwell(c.index)
		c.deadline = c.sched.Now().Add(total)
		c.countdown.Start(total)
	}

	c.transitioning = true
	c.notify()
	c.pipe.Transition(nil, to, func(r pipeline.Result) { c.transitionDone(gen, r) })
	return nil
}

// begin starts a new navigation: older completions become stale, pending
// auto-advance is dropped, a running transition snaps and the interrupt
// flag is cleared.
func (c *Controller) begin() uint64 {
	c.gen++
	c.cancelAdvance()
	c.pipe.Interrupt()
	c.interrupt.Clear()
	c.transitioning = false
	c.band = ""
	return c.gen
}

func (c *Controller) transitionDone(gen uint64, r pipeline.Result) {
	c.stats.Transitions++
	if r.Interrupted {
		c.stats.Interrupted++
	}
	if gen != c.gen {
		return
	}
	c.transitioning = false

	if c.playing {
		d := c.dwell(c.index)
		if !c.deadline.IsZero() {
			d = c.deadline.Sub(c.sched.Now())
		}
		c.armAdvance(d)
	}
	c.notify()
}

// dwell is how long the tour rests at waypoint i before moving on.
func (c *Controller) dwell(i int) time.Duration {
	wp := c.tour.At(i)
	if i == c.tour.Len()-1 && c.loop {
		if d, ok := wp.Override(tour.KeyEndOfTourPause); ok {
			return c.timing.Scale(d)
		}
		if d, ok := wp.Override(tour.KeyPause); ok {
			return c.timing.Scale(d)
		}
		return c.timing.Scale(c.cfg.EndPause)
	}
	if i == 0 {
		return c.timing.Resolve(wp, tour.KeyPause, c.cfg.FirstPause)
	}
	return c.timing.Resolve(wp, tour.KeyPause, c.cfg.DwellPause)
}

func (c *Controller) armAdvance(d time.Duration) {
	if c.advance != nil {
		c.advance.Stop()
	}
	if d < 0 {
		d = 0
	}
	gen := c.gen
	c.deadline = c.sched.Now().Add(d)
	c.advance = c.sched.AfterFunc(d, func() {
		if gen != c.gen || !c.playing {
			return
		}
		c.advance = nil
		c.AutoAdvance()
	})
	c.countdown.Start(d)
}

func (c *Controller) cancelAdvance() {
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
	c.deadline = time.Time{}
	if c.countdown != nil {
		c.countdown.Stop()
	}
}

// AutoAdvance moves to the next waypoint, wrapping to 0 when looping. At the
// end without loop playback pauses.
func (c *Controller) AutoAdvance() error {
	if !c.ready("AutoAdvance") {
		return ErrViewerUnavailable
	}
	next := c.index + 1
	if next >= c.tour.Len() {
		if !c.loop {
			c.stopPlaying()
			c.notify()
			return nil
		}
		next = 0
	}
	return c.GoTo(next)
}

// GoToFast jumps to waypoint i without animation.
func (c *Controller) GoToFast(i int) error {
	if !c.ready("GoToFast") {
		return ErrViewerUnavailable
	}
	c.begin()
	c.index = c.tour.Clamp(i)
	c.applyFast(c.tour.At(c.index))
	c.afterJump()
	return nil
}

// JumpWithHistory jumps to waypoint i after creating the layers of every
// waypoint up to it, so sticky layers along the way are in place.
func (c *Controller) JumpWithHistory(i int) error {
	if !c.ready("JumpWithHistory") {
		return ErrViewerUnavailable
	}
	c.begin()
	c.index = c.tour.Clamp(i)
	for j := 0; j <= c.index; j++ {
		wp := c.tour.At(j)
		c.cache.GetOrCreate(wp.FadeLayer)
		if c.cache.GetOrCreate(wp.URL) != nil && wp.IsSticky {
			c.cache.MarkSticky(wp.URL)
		}
	}
	c.applyFast(c.tour.At(c.index))
	c.afterJump()
	return nil
}

func (c *Controller) applyFast(wp *tour.Waypoint) {
	if wp.URL != "" {
		c.cache.GetOrCreate(wp.FadeLayer)
		c.cache.Foreground(wp.URL)
		c.cache.HideOthers(wp.URL, wp.FadeLayer, c.timing.Resolve(wp, tour.KeyFadeOut, c.cfg.HideFade))
		if wp.IsSticky {
			c.cache.MarkSticky(wp.URL)
		}
	}
	c.viewer.SetFoV(wp.FoV)
	c.viewer.GotoRaDec(wp.RA, wp.Dec)
}

func (c *Controller) afterJump() {
	c.stats.Jumps++
	if c.index == c.tour.Len()-1 && !c.loop && c.playing {
		c.stopPlaying()
	}
	if c.playing {
		c.armAdvance(c.dwell(c.index))
	}
	c.notify()
}

// Play starts playback. From the landing view it moves on at once,
// elsewhere it waits out the current waypoint's pause first.
func (c *Controller) Play() error {
	if !c.ready("Play") {
		return ErrViewerUnavailable
	}
	if c.playing {
		return nil
	}
	c.playing = true
	c.paused = false
	log.Printf("[*] Воспроизведение с точки %d", c.index)

	if c.index == 0 && c.tour.Len() > 1 {
		return c.GoTo(1)
	}
	if !c.transitioning {
		c.armAdvance(c.dwell(c.index))
	}
	c.notify()
	return nil
}

// Pause stops playback; a running transition snaps at its next step.
func (c *Controller) Pause() error {
	if !c.ready("Pause") {
		return ErrViewerUnavailable
	}
	c.stopPlaying()
	c.paused = true
	c.interrupt.Set()
	c.notify()
	return nil
}

// TogglePlay pauses when playing and plays otherwise.
func (c *Controller) TogglePlay() error {
	if c.playing {
		return c.Pause()
	}
	return c.Play()
}

func (c *Controller) stopPlaying() {
	if c.playing {
		log.Printf("[*] Пауза на точке %d", c.index)
		c.paused = true
	}
	c.playing = false
	c.cancelAdvance()
}

// Next stops playback and animates to the following waypoint, or back to
// the start from the last one.
func (c *Controller) Next() error {
	if !c.ready("Next") {
		return ErrViewerUnavailable
	}
	c.stopPlaying()
	next := c.index + 1
	if next >= c.tour.Len() {
		next = 0
	}
	return c.GoTo(next)
}

// Prev stops playback and animates to the previous waypoint.
func (c *Controller) Prev() error {
	if !c.ready("Prev") {
		return ErrViewerUnavailable
	}
	c.stopPlaying()
	return c.GoTo(c.index - 1)
}

// Reset stops playback, restores speed 1, drops every cached layer and
// animates back to the landing view.
func (c *Controller) Reset() error {
	if !c.ready("Reset") {
		return ErrViewerUnavailable
	}
	c.begin()
	c.playing = false
	c.paused = false
	_ = c.timing.SetSpeed(1)
	c.cache.Reset()
	c.slider = nil
	c.bands = nil
	c.showInitialSurvey()
	log.Printf("[*] Тур сброшен")
	return c.GoTo(0)
}

// Land handles a deep link: a known anchor jumps there with history, an
// unknown or empty one lands on the first waypoint.
func (c *Controller) Land(anchor string) error {
	if !c.ready("Land") {
		return ErrViewerUnavailable
	}
	if i := c.tour.IndexForAnchor(anchor); i >= 0 {
		log.Printf("[*] Переход по ссылке #%s к точке %d", anchor, i)
		return c.JumpWithHistory(i)
	}
	if anchor != "" {
		log.Printf("[!] Якорь #%s не найден, открывается первая точка", anchor)
	}
	return c.GoToFast(0)
}

// SetSpeed changes the playback speed. The countdown and a pending
// auto-advance keep their place: what is left is scaled by old/new.
func (c *Controller) SetSpeed(speed float64) error {
	if !c.ready("SetSpeed") {
		return ErrViewerUnavailable
	}
	old := c.timing.Speed()
	if err := c.timing.SetSpeed(speed); err != nil {
		return err
	}

	if !c.deadline.IsZero() {
		rem := c.deadline.Sub(c.sched.Now())
		if rem < 0 {
			rem = 0
		}
		rem = time.Duration(float64(rem) * old / speed)
		if c.advance != nil {
			c.armAdvance(rem)
		} else {
			c.deadline = c.sched.Now().Add(rem)
			c.countdown.Rescale(old, speed)
		}
	}
	log.Printf("[*] Скорость x%g", speed)
	c.notify()
	return nil
}

func (c *Controller) SetLoop(loop bool) error {
	if !c.ready("SetLoop") {
		return ErrViewerUnavailable
	}
	c.loop = loop
	c.notify()
	return nil
}

// SliderStep stops playback, lands any running transition and moves the
// layer slider by delta.
func (c *Controller) SliderStep(delta float64) (string, error) {
	if !c.ready("SliderStep") {
		return "", ErrViewerUnavailable
	}
	c.stopPlaying()
	c.begin()
	if c.slider == nil {
		items := make([]layers.SliderItem, 0, c.tour.Len())
		for i := range c.tour.Waypoints {
			wp := &c.tour.Waypoints[i]
			items = append(items, layers.SliderItem{ID: wp.URL, Title: wp.Title})
		}
		c.slider = layers.NewSlider(c.cache, items)
	}
	c.slider.Step(delta)
	c.notify()
	return c.slider.Label(), nil
}

// WavelengthStep stops playback, lands any running transition and moves the
// wavelength slider by delta bands. The first call shows the shortest band.
// It returns the band label.
func (c *Controller) WavelengthStep(delta int) (string, error) {
	if !c.ready("WavelengthStep") {
		return "", ErrViewerUnavailable
	}
	if len(c.tour.Wavelengths) == 0 {
		return "", ErrNoWavelengths
	}
	c.stopPlaying()
	c.begin()
	if c.bands == nil {
		bands := make([]layers.Band, 0, len(c.tour.Wavelengths))
		for _, w := range c.tour.Wavelengths {
			bands = append(bands, layers.Band{Wavelength: w.Wavelength, ID: w.URL, Label: w.Label, Description: w.Description})
		}
		c.bands = layers.NewWavelengthSlider(c.cache, bands)
		delta = 0
	}
	c.bands.Step(delta)

	b, _ := c.bands.Current()
	c.band = b.Description
	log.Printf("[*] Длина волны: %s (%g нм)", b.Label, b.Wavelength)
	c.notify()
	return b.Label, nil
}

// Index is the current waypoint index.
func (c *Controller) Index() int { return c.index }

// Count is the number of waypoints in the tour.
func (c *Controller) Count() int { return c.tour.Len() }

// Loop reports whether playback wraps around at the end.
func (c *Controller) Loop() bool { return c.loop }

// Stats returns the session counters.
func (c *Controller) Stats() Stats { return c.stats }

// Speed is the current playback multiplier.
func (c *Controller) Speed() float64 { return c.timing.Speed() }

// Waypoint returns the current waypoint.
func (c *Controller) Waypoint() *tour.Waypoint { return c.tour.At(c.index) }

// Cache exposes the layer cache, nil before Attach.
func (c *Controller) Cache() *layers.Cache { return c.cache }

// Description is the caption text: the picked wavelength's description, or
// the current waypoint's.
func (c *Controller) Description() string {
	if c.band != "" {
		return c.band
	}
	return c.Waypoint().Description
}

// State derives the UI state, a running transition first.
func (c *Controller) State() State {
	switch {
	case c.transitioning:
		return Transitioning
	case c.playing:
		return Playing
	case c.paused:
		return Paused
	}
	return Idle
}

// ShareAnchor is the anchor of the current waypoint.
func (c *Controller) ShareAnchor() string {
	return tour.Anchor(c.Waypoint().Title)
}

// Status snapshots the controller for the UI.
func (c *Controller) Status() Status {
	s := Status{
		Index:   c.index,
		Count:   c.tour.Len(),
		Title:   c.Waypoint().Title,
		Anchor:  c.ShareAnchor(),
		State:   c.State(),
		Playing: c.playing,
		Loop:    c.loop,
		Speed:   c.timing.Speed(),
	}
	if c.pipe != nil {
		s.Phase = c.pipe.Phase()
	}
	if c.countdown != nil {
		s.Remaining = c.countdown.Remaining()
	}
	return s
}

// OnChange registers an observer called after every state change.
func (c *Controller) OnChange(fn func(Status)) {
	c.onChange = append(c.onChange, fn)
}

// OnPhase registers an observer called as each transition phase starts,
// with the index of the target waypoint.
func (c *Controller) OnPhase(fn func(pipeline.Phase, int)) {
	c.onPhase = append(c.onPhase, fn)
}

func (c *Controller) phaseStarted(p pipeline.Phase, _ *tour.Waypoint) {
	for _, fn := range c.onPhase {
		fn(p, c.index)
	}
}

func (c *Controller) notify() {
	if len(c.onChange) == 0 {
		return
	}
	s := c.Status()
	for _, fn := range c.onChange {
		fn(s)
	}
}

package viewer

import (
	"fmt"
	"log"

	"github.com/ivlev/skytour/internal/coords"
)

// Op identifies a recorded viewer call.
type Op string

const (
	OpSetFoV        Op = "fov"
	OpGoto          Op = "goto"
	OpCreateOverlay Op = "overlay"
	OpDisplayRaster Op = "raster"
)

// Call is one recorded viewer call.
type Call struct {
	Op Op
	ID string
}

// LayerState is a snapshot of one overlay.
type LayerState struct {
	ID      string
	Opacity float64
}

// Recorder is an in-memory viewer. It keeps the camera and the overlays,
// draws nothing and records every structural call. Camera moves are not
// recorded one by one; use FoV and Position.
type Recorder struct {
	fov      float64
	pos      coords.Equatorial
	overlays []*recordedOverlay
	byID     map[string]*recordedOverlay
	raster   string

	// Reject lists ids whose overlay creation or raster display fails.
	Reject map[string]bool
	// Verbose logs structural calls.
	Verbose bool

	Calls []Call
	moves int
}

type recordedOverlay struct {
	id      string
	opacity float64
}

func (o *recordedOverlay) SetOpacity(v float64) { o.opacity = clamp01(v) }
func (o *recordedOverlay) Opacity() float64     { return o.opacity }

func NewRecorder(fov float64, pos coords.Equatorial) *Recorder {
	return &Recorder{
		fov:    fov,
		pos:    pos,
		byID:   make(map[string]*recordedOverlay),
		Reject: make(map[string]bool),
	}
}

func (r *Recorder) SetFoV(fov float64) {
	r.fov = fov
	r.moves++
}

func (r *Recorder) FoV() float64 { return r.fov }

func (r *Recorder) GotoRaDec(ra, dec float64) {
	r.pos = coords.Equatorial{RA: ra, Dec: dec}
	r.moves++
}

func (r *Recorder) Position() coords.Equatorial { return r.pos }

func (r *Recorder) CreateOverlay(id string) (Overlay, error) {
	r.Calls = append(r.Calls, Call{Op: OpCreateOverlay, ID: id})
	if r.Reject[id] {
		return nil, fmt.Errorf("%w: %s", ErrRejected, id)
	}
	o := &recordedOverlay{id: id}
	r.overlays = append(r.overlays, o)
	r.byID[id] = o
	if r.Verbose {
		log.Printf("[*] Создан слой %s", id)
	}
	return o, nil
}

func (r *Recorder) DisplayRaster(id string) error {
	r.Calls = append(r.Calls, Call{Op: OpDisplayRaster, ID: id})
	if r.Reject[id] {
		return fmt.Errorf("%w: %s", ErrRejected, id)
	}
	r.raster = id
	if r.Verbose {
		log.Printf("[*] Показано изображение %s", id)
	}
	return nil
}

// Raster is the id of the whole image on display, if any.
func (r *Recorder) Raster() string { return r.raster }

// Moves counts SetFoV and GotoRaDec calls.
func (r *Recorder) Moves() int { return r.moves }

// Opacity of the overlay created for id; ok is false if there is none.
func (r *Recorder) Opacity(id string) (v float64, ok bool) {
	o, ok := r.byID[id]
	if !ok {
		return 0, false
	}
	return o.opacity, true
}

// Layers lists overlays in creation order.
func (r *Recorder) Layers() []LayerState {
	out := make([]LayerState, len(r.overlays))
	for i, o := range r.overlays {
		out[i] = LayerState{ID: o.id, Opacity: o.opacity}
	}
	return out
}

// Count returns how many times op was called for id.
func (r *Recorder) Count(op Op, id string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op && c.ID == id {
			n++
		}
	}
	return n
}

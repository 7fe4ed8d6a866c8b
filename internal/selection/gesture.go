package selection

import (
	"errors"
	"fmt"

	"github.com/litescript/ls-skyselect/internal/screen"
)

// ErrInvalidTransition is returned for a gesture event the current state
// does not accept.
var ErrInvalidTransition = errors.New("invalid selection transition")

// State is the phase of a selection gesture.
type State int

const (
	Idle State = iota
	Dragging
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Gesture tracks one drag selection from pointer-down to pointer-up.
// It is not safe for concurrent use.
type Gesture struct {
	state   State
	start   screen.Pixel
	last    Region
	hasLast bool
}

// State returns the current phase.
func (g *Gesture) State() State {
	return g.state
}

// Start returns the anchor of the current or last gesture.
func (g *Gesture) Start() screen.Pixel {
	return g.start
}

// Last returns the most recent region, if any.
func (g *Gesture) Last() (Region, bool) {
	return g.last, g.hasLast
}

// Begin starts a gesture at p. A committed gesture may be replaced by a new
// one; a gesture already in progress may not.
func (g *Gesture) Begin(p screen.Pixel) error {
	if g.state == Dragging {
		return fmt.Errorf("begin while %s: %w", g.state, ErrInvalidTransition)
	}
	g.state = Dragging
	g.start = p
	g.last = Region{}
	g.hasLast = false
	return nil
}

// Move recomputes the region with the pointer at p. changed is true only when
// the corners or the clipped flag differ from the previous update, so
// callers can skip redundant repaints. Outside a drag Move does nothing.
func (g *Gesture) Move(p screen.Pixel, proj Projector, limit *Limit) (r Region, changed bool) {
	if g.state != Dragging {
		return g.last, false
	}
	r = Clip(g.start, p, proj, limit)
	changed = !g.hasLast || !r.Equal(g.last)
	g.last = r
	g.hasLast = true
	return r, changed
}

// Commit finishes the drag at p and returns the final region.
func (g *Gesture) Commit(p screen.Pixel, proj Projector, limit *Limit) (Region, error) {
	if g.state != Dragging {
		return Region{}, fmt.Errorf("commit while %s: %w", g.state, ErrInvalidTransition)
	}
	g.last = Clip(g.start, p, proj, limit)
	g.hasLast = true
	g.state = Committed
	return g.last, nil
}

// Cancel abandons a drag and returns to Idle.
func (g *Gesture) Cancel() error {
	if g.state != Dragging {
		return fmt.Errorf("cancel while %s: %w", g.state, ErrInvalidTransition)
	}
	g.state = Idle
	g.last = Region{}
	g.hasLast = false
	return nil
}

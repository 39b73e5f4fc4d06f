// Package gesture classifies touch sequences into swipes and pinches.
//
// A [Recognizer] consumes [TouchEvent] values. A gesture starts with the first touch and ends when the last touch
// lifts. On end, a single-finger sequence whose larger axis displacement exceeds Threshold and whose speed exceeds
// VelocityThreshold is reported as one directional swipe. While exactly two touches move, each move reports a pinch
// with the ratio of the current to the previous finger distance. A sequence that ever had two touches is a pinch
// sequence and never yields a swipe.
package gesture

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultThreshold         = 50.0 // px
	DefaultVelocityThreshold = 0.3  // px/ms
)

// Kind is a classified gesture.
type Kind int

const (
	None Kind = iota
	SwipeLeft
	SwipeRight
	SwipeUp
	SwipeDown
	Pinch
)

func (k Kind) String() string {
	switch k {
	case SwipeLeft:
		return "swipe_left"
	case SwipeRight:
		return "swipe_right"
	case SwipeUp:
		return "swipe_up"
	case SwipeDown:
		return "swipe_down"
	case Pinch:
		return "pinch"
	default:
		return "none"
	}
}

// Gesture is a recognised outcome. Scale is set for [Pinch] only.
type Gesture struct {
	Kind  Kind
	Scale float64
}

// EventType is the phase of a [TouchEvent].
type EventType int

const (
	TouchStart EventType = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// Point is one touch contact in device-independent pixels.
type Point struct {
	ID   int
	X, Y float64
}

// TouchEvent mirrors a platform touch event: Touches are the contacts still down after the event,
// Changed are the contacts this event is about.
type TouchEvent struct {
	Type    EventType
	Touches []Point
	Changed []Point
	Time    time.Time
}

// Config holds callbacks and thresholds. Zero thresholds take the defaults.
type Config struct {
	OnSwipeLeft       func()
	OnSwipeRight      func()
	OnSwipeUp         func()
	OnSwipeDown       func()
	OnPinch           func(scale float64)
	Threshold         float64
	VelocityThreshold float64
}

// Recognizer tracks one gesture at a time. It is safe for concurrent use; callbacks run on the caller's goroutine
// after internal state is updated.
type Recognizer struct {
	mu  sync.Mutex
	cfg Config

	active    bool
	start     Point
	startTime time.Time
	prevDist  float64
	multi     bool
}

func NewRecognizer(cfg Config) *Recognizer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.VelocityThreshold <= 0 {
		cfg.VelocityThreshold = DefaultVelocityThreshold
	}
	return &Recognizer{cfg: cfg}
}

// Handle feeds one event and returns the gestures it completed, after firing their callbacks.
func (r *Recognizer) Handle(ev TouchEvent) []Gesture {
	r.mu.Lock()
	var out []Gesture
	switch ev.Type {
	case TouchStart:
		r.onStart(ev)
	case TouchMove:
		if g, ok := r.onMove(ev); ok {
			out = append(out, g)
		}
	case TouchEnd:
		if g, ok := r.onEnd(ev); ok {
			out = append(out, g)
		}
	case TouchCancel:
		r.reset()
	}
	cfg := r.cfg
	r.mu.Unlock()

	for _, g := range out {
		fire(cfg, g)
	}
	return out
}

// Active reports whether a gesture is in progress.
func (r *Recognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Recognizer) onStart(ev TouchEvent) {
	if !r.active {
		first, ok := firstPoint(ev.Changed, ev.Touches)
		if !ok {
			return
		}
		r.active = true
		r.start = first
		r.startTime = ev.Time
		r.prevDist = 0
		r.multi = false
	}
	if len(ev.Touches) >= 2 {
		r.multi = true
	}
	if len(ev.Touches) == 2 {
		r.prevDist = distance(ev.Touches[0], ev.Touches[1])
	} else {
		r.prevDist = 0
	}
}

func (r *Recognizer) onMove(ev TouchEvent) (Gesture, bool) {
	if !r.active {
		return Gesture{}, false
	}
	if len(ev.Touches) >= 2 {
		r.multi = true
	}
	if len(ev.Touches) != 2 || r.cfg.OnPinch == nil {
		return Gesture{}, false
	}

	d := distance(ev.Touches[0], ev.Touches[1])
	prev := r.prevDist
	r.prevDist = d
	if prev <= 0 || d <= 0 {
		return Gesture{}, false
	}
	return Gesture{Kind: Pinch, Scale: d / prev}, true
}

func (r *Recognizer) onEnd(ev TouchEvent) (Gesture, bool) {
	if !r.active {
		return Gesture{}, false
	}
	if len(ev.Touches) > 0 {
		// a finger of a multi-touch gesture lifted; the rest is still down
		if len(ev.Touches) != 2 {
			r.prevDist = 0
		}
		return Gesture{}, false
	}
	defer r.reset()

	if r.multi {
		return Gesture{}, false
	}
	end, ok := firstPoint(ev.Changed, nil)
	if !ok {
		return Gesture{}, false
	}

	dx, dy := end.X-r.start.X, end.Y-r.start.Y
	dt := float64(ev.Time.Sub(r.startTime)) / float64(time.Millisecond)
	if dt <= 0 {
		dt = 1
	}
	velocity := math.Hypot(dx, dy) / dt

	if math.Max(math.Abs(dx), math.Abs(dy)) <= r.cfg.Threshold || velocity <= r.cfg.VelocityThreshold {
		return Gesture{}, false
	}
	return Gesture{Kind: direction(dx, dy)}, true
}

func (r *Recognizer) reset() {
	r.active = false
	r.start = Point{}
	r.startTime = time.Time{}
	r.prevDist = 0
	r.multi = false
}

// direction picks the dominant axis; ties go vertical.
func direction(dx, dy float64) Kind {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return SwipeRight
		}
		return SwipeLeft
	}
	if dy > 0 {
		return SwipeDown
	}
	return SwipeUp
}

func fire(cfg Config, g Gesture) {
	var fn func()
	switch g.Kind {
	case SwipeLeft:
		fn = cfg.OnSwipeLeft
	case SwipeRight:
		fn = cfg.OnSwipeRight
	case SwipeUp:
		fn = cfg.OnSwipeUp
	case SwipeDown:
		fn = cfg.OnSwipeDown
	case Pinch:
		if cfg.OnPinch != nil {
			cfg.OnPinch(g.Scale)
		}
		return
	}
	if fn != nil {
		fn()
	}
}

func firstPoint(primary, fallback []Point) (Point, bool) {
	if len(primary) > 0 {
		return primary[0], true
	}
	if len(fallback) > 0 {
		return fallback[0], true
	}
	return Point{}, false
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

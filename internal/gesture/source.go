package gesture

import (
	"slices"
	"sync"
	"time"
)

// Source delivers touch events to subscribers.
type Source interface {
	Subscribe(fn func(TouchEvent)) (unsubscribe func())
}

// Attach connects a new [Recognizer] for cfg to src. The returned detach stops delivery.
func Attach(src Source, cfg Config) (detach func()) {
	r := NewRecognizer(cfg)
	return src.Subscribe(func(ev TouchEvent) { r.Handle(ev) })
}

// Feed is an in-process [Source] that keeps track of active contacts, used to replay pointer input.
type Feed struct {
	mu      sync.Mutex
	subs    map[int]func(TouchEvent)
	next    int
	touches []Point
}

var _ Source = (*Feed)(nil)

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(TouchEvent))}
}

func (f *Feed) Subscribe(fn func(TouchEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Dispatch delivers ev to every subscriber as is.
func (f *Feed) Dispatch(ev TouchEvent) {
	f.mu.Lock()
	subs := make([]func(TouchEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Start puts contacts down.
func (f *Feed) Start(at time.Time, pts ...Point) {
	f.mu.Lock()
	for _, p := range pts {
		f.touches = upsert(f.touches, p)
	}
	touches := slices.Clone(f.touches)
	f.mu.Unlock()
	f.Dispatch(TouchEvent{Type: TouchStart, Touches: touches, Changed: pts, Time: at})
}

// Move updates contacts by ID.
func (f *Feed) Move(at time.Time, pts ...Point) {
	f.mu.Lock()
	for _, p := range pts {
		f.touches = upsert(f.touches, p)
	}
	touches := slices.Clone(f.touches)
	f.mu.Unlock()
	f.Dispatch(TouchEvent{Type: TouchMove, Touches: touches, Changed: pts, Time: at})
}

// End lifts contacts at their final positions.
func (f *Feed) End(at time.Time, pts ...Point) {
	f.mu.Lock()
	for _, p := range pts {
		f.touches = slices.DeleteFunc(f.touches, func(t Point) bool { return t.ID == p.ID })
	}
	touches := slices.Clone(f.touches)
	f.mu.Unlock()
	f.Dispatch(TouchEvent{Type: TouchEnd, Touches: touches, Changed: pts, Time: at})
}

// Cancel drops every contact.
func (f *Feed) Cancel(at time.Time) {
	f.mu.Lock()
	changed := f.touches
	f.touches = nil
	f.mu.Unlock()
	f.Dispatch(TouchEvent{Type: TouchCancel, Changed: changed, Time: at})
}

func upsert(touches []Point, p Point) []Point {
	for i := range touches {
		if touches[i].ID == p.ID {
			touches[i] = p
			return touches
		}
	}
	return append(touches, p)
}

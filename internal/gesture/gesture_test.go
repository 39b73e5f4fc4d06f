package gesture

import (
	"testing"
	"time"
)

type counts struct {
	left, right, up, down int
	pinches               []float64
}

func (c *counts) config() Config {
	return Config{
		OnSwipeLeft:  func() { c.left++ },
		OnSwipeRight: func() { c.right++ },
		OnSwipeUp:    func() { c.up++ },
		OnSwipeDown:  func() { c.down++ },
		OnPinch:      func(s float64) { c.pinches = append(c.pinches, s) },
	}
}

func (c *counts) swipes() int { return c.left + c.right + c.up + c.down }

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func drag(f *Feed, dx, dy float64, d time.Duration) {
	f.Start(t0, Point{ID: 1, X: 100, Y: 100})
	f.Move(t0.Add(d/2), Point{ID: 1, X: 100 + dx/2, Y: 100 + dy/2})
	f.End(t0.Add(d), Point{ID: 1, X: 100 + dx, Y: 100 + dy})
}

func TestRecognizer(t *testing.T) {
	t.Run("swipes", func(t *testing.T) {
		tests := []struct {
			name   string
			dx, dy float64
			want   Kind
		}{
			{"right", 60, 0, SwipeRight},
			{"left", -60, 5, SwipeLeft},
			{"down", 10, 80, SwipeDown},
			{"up", -10, -80, SwipeUp},
			{"diagonal tie goes vertical", 70, -70, SwipeUp},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := &counts{}
				f := NewFeed()
				Attach(f, c.config())
				drag(f, tt.dx, tt.dy, 100*time.Millisecond)

				if c.swipes() != 1 {
					t.Fatalf("expected exactly one swipe, got %+v", c)
				}
				r := NewRecognizer(Config{})
				r.Handle(TouchEvent{Type: TouchStart, Touches: []Point{{ID: 1, X: 0, Y: 0}}, Changed: []Point{{ID: 1}}, Time: t0})
				got := r.Handle(TouchEvent{Type: TouchEnd, Changed: []Point{{ID: 1, X: tt.dx, Y: tt.dy}}, Time: t0.Add(100 * time.Millisecond)})
				if len(got) != 1 || got[0].Kind != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("horizontal 60px in 100ms fires exactly one horizontal callback", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		Attach(f, c.config())
		drag(f, 60, 0, 100*time.Millisecond)

		if c.left+c.right != 1 || c.up+c.down != 0 {
			t.Errorf("unexpected callbacks %+v", c)
		}
	})

	t.Run("below threshold fires nothing regardless of velocity", func(t *testing.T) {
		for _, d := range []time.Duration{time.Millisecond, 10 * time.Millisecond, time.Second} {
			c := &counts{}
			f := NewFeed()
			Attach(f, c.config())
			drag(f, 40, 0, d)
			if c.swipes() != 0 {
				t.Errorf("duration %v: expected no swipe, got %+v", d, c)
			}
		}
	})

	t.Run("exactly threshold fires nothing", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		Attach(f, c.config())
		drag(f, 50, 0, 10*time.Millisecond)
		if c.swipes() != 0 {
			t.Errorf("expected no swipe at threshold, got %+v", c)
		}
	})

	t.Run("slow drag fires nothing", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		Attach(f, c.config())
		drag(f, 100, 0, time.Second) // 0.1 px/ms
		if c.swipes() != 0 {
			t.Errorf("expected no swipe, got %+v", c)
		}
	})

	t.Run("custom thresholds", func(t *testing.T) {
		c := &counts{}
		cfg := c.config()
		cfg.Threshold = 20
		cfg.VelocityThreshold = 0.1
		f := NewFeed()
		Attach(f, cfg)
		drag(f, 30, 0, 200*time.Millisecond)
		if c.right != 1 {
			t.Errorf("expected one right swipe, got %+v", c)
		}
	})

	t.Run("pinch reports scale and never swipes", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		Attach(f, c.config())

		f.Start(t0, Point{ID: 1, X: 100, Y: 100})
		f.Start(t0.Add(5*time.Millisecond), Point{ID: 2, X: 200, Y: 100})
		f.Move(t0.Add(20*time.Millisecond), Point{ID: 2, X: 300, Y: 100})
		f.Move(t0.Add(40*time.Millisecond), Point{ID: 2, X: 250, Y: 100})
		f.End(t0.Add(50*time.Millisecond), Point{ID: 2, X: 250, Y: 100})
		f.End(t0.Add(60*time.Millisecond), Point{ID: 1, X: 180, Y: 100})

		if len(c.pinches) != 2 {
			t.Fatalf("expected 2 pinch events, got %v", c.pinches)
		}
		if c.pinches[0] != 2 || c.pinches[1] != 0.75 {
			t.Errorf("unexpected scales %v", c.pinches)
		}
		if c.swipes() != 0 {
			t.Errorf("expected no swipe from a pinch sequence, got %+v", c)
		}
	})

	t.Run("two touches without pinch callback still suppress swipe", func(t *testing.T) {
		c := &counts{}
		cfg := c.config()
		cfg.OnPinch = nil
		r := NewRecognizer(cfg)

		r.Handle(TouchEvent{Type: TouchStart, Touches: []Point{{ID: 1}}, Changed: []Point{{ID: 1}}, Time: t0})
		got := r.Handle(TouchEvent{Type: TouchMove, Touches: []Point{{ID: 1, X: 10}, {ID: 2, X: 50}}, Time: t0.Add(time.Millisecond)})
		if len(got) != 0 {
			t.Errorf("expected no pinch without callback, got %v", got)
		}
		r.Handle(TouchEvent{Type: TouchEnd, Changed: []Point{{ID: 1, X: 200}}, Time: t0.Add(10 * time.Millisecond)})
		if c.swipes() != 0 {
			t.Errorf("expected suppressed swipe, got %+v", c)
		}
	})

	t.Run("state resets after end", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		r := NewRecognizer(c.config())
		f.Subscribe(func(ev TouchEvent) { r.Handle(ev) })

		drag(f, 10, 0, 100*time.Millisecond)
		if r.Active() {
			t.Error("expected inactive after end")
		}
		drag(f, -80, 0, 100*time.Millisecond)
		if c.left != 1 {
			t.Errorf("expected left swipe after reset, got %+v", c)
		}
	})

	t.Run("cancel resets without firing", func(t *testing.T) {
		c := &counts{}
		f := NewFeed()
		r := NewRecognizer(c.config())
		f.Subscribe(func(ev TouchEvent) { r.Handle(ev) })

		f.Start(t0, Point{ID: 1, X: 0, Y: 0})
		f.Move(t0.Add(50*time.Millisecond), Point{ID: 1, X: 200, Y: 0})
		f.Cancel(t0.Add(60 * time.Millisecond))
		if r.Active() || c.swipes() != 0 {
			t.Errorf("expected reset without callbacks, active=%v %+v", r.Active(), c)
		}
	})

	t.Run("end without start is ignored", func(t *testing.T) {
		c := &counts{}
		r := NewRecognizer(c.config())
		if got := r.Handle(TouchEvent{Type: TouchEnd, Changed: []Point{{ID: 1, X: 500}}, Time: t0}); len(got) != 0 {
			t.Errorf("expected nothing, got %v", got)
		}
	})

	t.Run("zero elapsed time counts as one millisecond", func(t *testing.T) {
		r := NewRecognizer(Config{})
		r.Handle(TouchEvent{Type: TouchStart, Touches: []Point{{ID: 1}}, Changed: []Point{{ID: 1}}, Time: t0})
		got := r.Handle(TouchEvent{Type: TouchEnd, Changed: []Point{{ID: 1, X: 60}}, Time: t0})
		if len(got) != 1 || got[0].Kind != SwipeRight {
			t.Errorf("expected right swipe, got %v", got)
		}
	})
}

func TestAttachDetach(t *testing.T) {
	c := &counts{}
	f := NewFeed()
	detach := Attach(f, c.config())

	drag(f, 80, 0, 100*time.Millisecond)
	detach()
	detach()
	drag(f, 80, 0, 100*time.Millisecond)

	if c.right != 1 {
		t.Errorf("expected one swipe before detach, got %+v", c)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		None: "none", SwipeLeft: "swipe_left", SwipeRight: "swipe_right",
		SwipeUp: "swipe_up", SwipeDown: "swipe_down", Pinch: "pinch",
	} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

package player

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/wavelet/internal/models"
	th "github.com/desertthunder/wavelet/internal/testing"
)

type recordingHandle struct {
	playlists [][]string
	toggles   int
	seeks     []float64
	deltas    []float64
	skips     int
	err       error
}

func (r *recordingHandle) PlayPlaylist(ctx context.Context, ids []string) error {
	r.playlists = append(r.playlists, ids)
	return r.err
}
func (r *recordingHandle) Toggle()          { r.toggles++ }
func (r *recordingHandle) Seek(pct float64) { r.seeks = append(r.seeks, pct) }
func (r *recordingHandle) SeekBy(d float64) { r.deltas = append(r.deltas, d) }
func (r *recordingHandle) Next(ctx context.Context) error {
	r.skips++
	return nil
}
func (r *recordingHandle) Previous(ctx context.Context) error {
	r.skips--
	return nil
}

func TestBridge(t *testing.T) {
	ctx := context.Background()

	t.Run("PlayPlaylist before attach is replayed once", func(t *testing.T) {
		b := NewBridge(quietLogger())
		if err := b.PlayPlaylist(ctx, []string{"a"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.PlayPlaylist(ctx, []string{"b", "c"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		h := &recordingHandle{}
		if err := b.Attach(ctx, h); err != nil {
			t.Fatalf("Attach: %v", err)
		}
		if len(h.playlists) != 1 || len(h.playlists[0]) != 2 || h.playlists[0][0] != "b" {
			t.Fatalf("expected latest pending playlist replayed, got %v", h.playlists)
		}

		b.Detach()
		if err := b.Attach(ctx, h); err != nil {
			t.Fatalf("re-Attach: %v", err)
		}
		if len(h.playlists) != 1 {
			t.Errorf("expected no second replay, got %v", h.playlists)
		}
	})

	t.Run("pending ids are copied", func(t *testing.T) {
		b := NewBridge(quietLogger())
		ids := []string{"a", "b"}
		b.PlayPlaylist(ctx, ids)
		ids[0] = "mutated"

		h := &recordingHandle{}
		b.Attach(ctx, h)
		if h.playlists[0][0] != "a" {
			t.Errorf("expected recorded copy, got %v", h.playlists[0])
		}
	})

	t.Run("Attach surfaces replay error", func(t *testing.T) {
		b := NewBridge(quietLogger())
		b.PlayPlaylist(ctx, []string{"a"})
		h := &recordingHandle{err: errors.New("boom")}
		if err := b.Attach(ctx, h); err == nil {
			t.Error("expected replay error")
		}
	})

	t.Run("forwards while attached and drops while detached", func(t *testing.T) {
		b := NewBridge(quietLogger())
		h := &recordingHandle{}

		b.Toggle()
		b.Seek(10)
		if err := b.Next(ctx); err != nil {
			t.Errorf("expected nil from detached Next, got %v", err)
		}

		b.Attach(ctx, h)
		if !b.Attached() {
			t.Fatal("expected attached")
		}
		b.Toggle()
		b.Seek(25)
		b.SeekBy(-5)
		b.Next(ctx)
		b.Next(ctx)
		b.Previous(ctx)
		b.PlayPlaylist(ctx, []string{"x"})

		if h.toggles != 1 || len(h.seeks) != 1 || h.seeks[0] != 25 || len(h.deltas) != 1 || h.deltas[0] != -5 || h.skips != 1 || len(h.playlists) != 1 {
			t.Errorf("unexpected forwarded calls: %+v", h)
		}

		b.Detach()
		b.Toggle()
		if h.toggles != 1 {
			t.Error("expected toggle dropped after detach")
		}
	})

	t.Run("drives a real player", func(t *testing.T) {
		catalog := th.NewMockCatalog(dawn, dusk)
		p, _ := newTestPlayer(t, Options{Resolver: catalog})
		b := NewBridge(quietLogger())

		b.PlayPlaylist(ctx, []string{"t2", "t1"})
		if p.State().Track != nil {
			t.Fatal("expected nothing loaded before attach")
		}
		if err := b.Attach(ctx, p); err != nil {
			t.Fatalf("Attach: %v", err)
		}
		s := p.State()
		if s.Track == nil || s.Track.ID != "t2" || !s.Playing {
			t.Errorf("expected t2 playing after attach, got %+v", s)
		}
	})
}

func TestQueue(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		q := NewQueue(nil)
		if _, ok := q.Current(); ok {
			t.Error("expected no current track")
		}
		if _, ok := q.Next(); ok {
			t.Error("expected Next to fail")
		}
		if q.Index() != -1 {
			t.Errorf("expected index -1, got %d", q.Index())
		}
	})

	t.Run("wraps both ways", func(t *testing.T) {
		q := NewQueue([]models.Track{dawn, dusk, noon})
		if tr, _ := q.Previous(); tr.ID != "t3" {
			t.Errorf("expected t3, got %s", tr.ID)
		}
		if tr, _ := q.Next(); tr.ID != "t1" {
			t.Errorf("expected t1, got %s", tr.ID)
		}
		if tr, _ := q.Next(); tr.ID != "t2" {
			t.Errorf("expected t2, got %s", tr.ID)
		}
	})

	t.Run("peek does not move", func(t *testing.T) {
		q := NewQueue([]models.Track{dawn, dusk})
		i, tr, ok := q.peek(-3)
		if !ok || i != 1 || tr.ID != "t2" {
			t.Errorf("peek(-3) = %d %s %v", i, tr.ID, ok)
		}
		if q.Index() != 0 {
			t.Error("peek moved the cursor")
		}
	})
}

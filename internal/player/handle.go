package player

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/shared"
)

// Handle is the playback command surface shared with views and other components.
type Handle interface {
	PlayPlaylist(ctx context.Context, ids []string) error
	Toggle()
	Seek(pct float64)
	SeekBy(delta float64)
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

// Bridge is a [Handle] that forwards to an attached target.
//
// PlayPlaylist calls made while nothing is attached are remembered (latest wins) and replayed on Attach.
// Other commands are dropped while detached.
type Bridge struct {
	mu      sync.Mutex
	target  Handle
	pending []string
	queued  bool
	logger  *log.Logger
}

var _ Handle = (*Bridge)(nil)

func NewBridge(logger *log.Logger) *Bridge {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Bridge{logger: logger.With("component", "bridge")}
}

// Attach sets the target and replays a pending PlayPlaylist, returning its error.
func (b *Bridge) Attach(ctx context.Context, h Handle) error {
	b.mu.Lock()
	b.target = h
	ids, queued := b.pending, b.queued
	b.pending, b.queued = nil, false
	b.mu.Unlock()

	if !queued || h == nil {
		return nil
	}
	b.logger.Debug("replaying pending playlist", "tracks", len(ids))
	return h.PlayPlaylist(ctx, ids)
}

// Detach clears the target. Later PlayPlaylist calls are recorded again.
func (b *Bridge) Detach() {
	b.mu.Lock()
	b.target = nil
	b.mu.Unlock()
}

// Attached reports whether a target is set.
func (b *Bridge) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target != nil
}

func (b *Bridge) current() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

func (b *Bridge) PlayPlaylist(ctx context.Context, ids []string) error {
	b.mu.Lock()
	h := b.target
	if h == nil {
		b.pending, b.queued = slices.Clone(ids), true
		b.mu.Unlock()
		b.logger.Debug("playlist recorded until attach", "tracks", len(ids))
		return nil
	}
	b.mu.Unlock()
	return h.PlayPlaylist(ctx, ids)
}

func (b *Bridge) Toggle() {
	if h := b.current(); h != nil {
		h.Toggle()
	}
}

func (b *Bridge) Seek(pct float64) {
	if h := b.current(); h != nil {
		h.Seek(pct)
	}
}

func (b *Bridge) SeekBy(delta float64) {
	if h := b.current(); h != nil {
		h.SeekBy(delta)
	}
}

func (b *Bridge) Next(ctx context.Context) error {
	if h := b.current(); h != nil {
		return h.Next(ctx)
	}
	return nil
}

func (b *Bridge) Previous(ctx context.Context) error {
	if h := b.current(); h != nil {
		return h.Previous(ctx)
	}
	return nil
}

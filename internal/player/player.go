package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

// State is a snapshot of a [Player].
type State struct {
	Track    *models.Track
	Playing  bool
	Progress float64 // percent, [0,100]
}

// Elapsed converts progress to a position within the track.
func (s State) Elapsed() time.Duration {
	if s.Track == nil {
		return 0
	}
	return time.Duration(float64(s.Track.Length()) * s.Progress / 100)
}

// Loader prepares a track's audio source. It returns the probed duration, zero when unknown.
type Loader interface {
	Load(ctx context.Context, track models.Track) (time.Duration, error)
}

// Resolver turns track ids into tracks, in the order of ids. Unknown ids are skipped.
type Resolver interface {
	GetTracks(ctx context.Context, ids []string) ([]models.Track, error)
}

// Options configures a [Player]. Zero values select [Continue], [DurationTick], [SystemClock] and a stderr logger.
type Options struct {
	Restart  RestartOnPlayPolicy
	Tick     TickPolicy
	Clock    Clock
	Loader   Loader
	Resolver Resolver
	Logger   *log.Logger
}

// Player is the playback state holder. It is safe for concurrent use.
type Player struct {
	mu       sync.Mutex
	restart  RestartOnPlayPolicy
	tick     TickPolicy
	clock    Clock
	loader   Loader
	resolver Resolver
	logger   *log.Logger

	track    *models.Track
	playing  bool
	progress float64
	queue    *Queue

	ticker  Ticker
	stop    chan struct{}
	gen     uint64
	loadSeq uint64
	closed  bool
	updates chan State
}

var _ Handle = (*Player)(nil)

func New(opts Options) *Player {
	if opts.Tick.Step == nil || opts.Tick.Interval <= 0 {
		opts.Tick = DurationTick
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Player{
		restart:  opts.Restart,
		tick:     opts.Tick,
		clock:    opts.Clock,
		loader:   opts.Loader,
		resolver: opts.Resolver,
		logger:   opts.Logger.With("component", "player"),
		queue:    NewQueue(nil),
		updates:  make(chan State, 1),
	}
}

// State returns the current snapshot.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Updates delivers the latest state after every change. Only the newest snapshot is kept;
// the channel is closed by [Player.Close].
func (p *Player) Updates() <-chan State { return p.updates }

// Running reports whether the progress ticker is alive.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker != nil
}

// Queue returns a copy of the queued tracks and the cursor.
func (p *Player) Queue() ([]models.Track, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Tracks(), p.queue.Index()
}

// Play starts playback of the loaded track. Without a track it does nothing.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.play() {
		p.publish()
	}
}

// Pause stops playback and the ticker. Progress is kept.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pause() {
		p.publish()
	}
}

// Toggle flips between playing and paused, applying the restart policy on resume.
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var changed bool
	if p.playing {
		changed = p.pause()
	} else {
		changed = p.play()
	}
	if changed {
		p.publish()
	}
}

// Seek sets progress to pct clamped to [0,100]. The playing flag is untouched.
func (p *Player) Seek(pct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.progress = shared.Clamp(pct, 0, 100)
	p.publish()
}

// SeekBy moves progress by delta percentage points from its current value, clamped to [0, 100].
// Repeated calls accumulate even when no update has been observed in between.
func (p *Player) SeekBy(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.track == nil {
		return
	}
	p.progress = shared.Clamp(p.progress+delta, 0, 100)
	p.publish()
}

// Tick advances progress by one step of the tick policy while playing.
func (p *Player) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
}

// LoadTrack replaces the loaded track and resets progress to 0. Playback is neither started nor stopped.
//
// When the loader fails the previous track and progress are kept, playback is paused and a
// [*PlaybackError] of kind [LoadFailed] is returned. A load superseded by a later one is dropped.
func (p *Player) LoadTrack(ctx context.Context, track models.Track) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return shared.ErrPlayerClosed
	}
	p.loadSeq++
	seq := p.loadSeq
	loader := p.loader
	p.mu.Unlock()

	if loader != nil {
		d, err := loader.Load(ctx, track)
		if err != nil {
			p.mu.Lock()
			if !p.closed && seq == p.loadSeq && p.pause() {
				p.publish()
			}
			p.mu.Unlock()
			p.logger.Warn("track load failed", "track", track.ID, "err", err)
			return &PlaybackError{Kind: LoadFailed, TrackID: track.ID, Err: err}
		}
		if track.Duration <= 0 && d > 0 {
			track = track.WithDuration(d)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return shared.ErrPlayerClosed
	}
	if seq != p.loadSeq {
		p.logger.Debug("load superseded", "track", track.ID)
		return nil
	}
	p.track = &track
	p.progress = 0
	p.publish()
	p.logger.Debug("track loaded", "track", track.ID, "duration", track.Duration)
	return nil
}

// PlayPlaylist resolves ids, queues the resulting tracks, loads the first and starts playback.
func (p *Player) PlayPlaylist(ctx context.Context, ids []string) error {
	p.mu.Lock()
	closed, resolver := p.closed, p.resolver
	p.mu.Unlock()
	if closed {
		return shared.ErrPlayerClosed
	}
	if resolver == nil {
		return fmt.Errorf("%w: no track resolver", shared.ErrServiceUnavailable)
	}

	tracks, err := resolver.GetTracks(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve playlist: %w", err)
	}
	if len(tracks) == 0 {
		return shared.ErrEmptyQueue
	}

	if err := p.LoadTrack(ctx, tracks[0]); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = NewQueue(tracks)
	p.play()
	p.publish()
	p.logger.Info("playing playlist", "tracks", len(tracks))
	return nil
}

// Next loads the following queued track, wrapping to the first.
func (p *Player) Next(ctx context.Context) error { return p.skip(ctx, 1) }

// Previous loads the preceding queued track, wrapping to the last.
func (p *Player) Previous(ctx context.Context) error { return p.skip(ctx, -1) }

func (p *Player) skip(ctx context.Context, delta int) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return shared.ErrPlayerClosed
	}
	i, track, ok := p.queue.peek(delta)
	q := p.queue
	p.mu.Unlock()
	if !ok {
		return shared.ErrEmptyQueue
	}

	if err := p.LoadTrack(ctx, track); err != nil {
		return err
	}

	p.mu.Lock()
	if p.queue == q {
		q.cursor = i
	}
	p.mu.Unlock()
	return nil
}

// Close stops the ticker and closes [Player.Updates]. Every later mutation is a no-op.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.stopTicker()
	p.playing = false
	p.closed = true
	close(p.updates)
}

// play and pause report whether anything changed; callers hold mu.
func (p *Player) play() bool {
	if p.closed || p.track == nil || p.playing {
		return false
	}
	if p.restart == RestartFromZero {
		p.progress = 0
	}
	p.playing = true
	p.startTicker()
	return true
}

func (p *Player) pause() bool {
	if p.closed || !p.playing {
		return false
	}
	p.playing = false
	p.stopTicker()
	return true
}

func (p *Player) advance() {
	if p.closed || !p.playing || p.track == nil {
		return
	}
	p.progress = advance(p.progress, p.tick.Step(*p.track))
	p.publish()
}

func (p *Player) startTicker() {
	p.stopTicker()
	p.gen++
	gen := p.gen
	t := p.clock.NewTicker(p.tick.Interval)
	stop := make(chan struct{})
	p.ticker, p.stop = t, stop
	go p.run(t, stop, gen)
}

func (p *Player) stopTicker() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	close(p.stop)
	p.ticker, p.stop = nil, nil
}

func (p *Player) run(t Ticker, stop <-chan struct{}, gen uint64) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			p.mu.Lock()
			if gen == p.gen {
				p.advance()
			}
			p.mu.Unlock()
		}
	}
}

func (p *Player) snapshot() State {
	s := State{Playing: p.playing, Progress: p.progress}
	if p.track != nil {
		t := *p.track
		s.Track = &t
	}
	return s
}

// publish replaces any unread snapshot with the current one; callers hold mu.
func (p *Player) publish() {
	if p.closed {
		return
	}
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- p.snapshot():
	default:
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/desertthunder/wavelet/internal/gesture"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/player"
	"github.com/desertthunder/wavelet/internal/services"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/waveform"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	BrowseView
	PlayerView
)

const (
	margin         = 2  // left padding in cells
	waveformTop    = 5  // first waveform row in the full player
	miniPlayerRows = 6  // rows below the track list in the browse view
	seekStep       = 5  // percent per arrow key
	cellWidth      = 8  // px per cell, for gesture thresholds
	cellHeight     = 16 // px per cell
)

// StateSource publishes player snapshots. Close cancels the player's timer and ends Updates.
type StateSource interface {
	State() player.State
	Updates() <-chan player.State
	Close()
}

// LikeStore persists the liked-song set.
type LikeStore interface {
	Load() (map[string]struct{}, error)
	Toggle(trackID string) (bool, error)
}

// Options holds the [Model] dependencies. Handle receives every playback intent; Player supplies state.
type Options struct {
	Catalog  services.Catalog
	Handle   player.Handle
	Player   StateSource
	Likes    LikeStore
	Statuses []string
	Samples  int
	Seed     int64 // waveform seed; zero seeds from Now
	Now      func() time.Time
	Logger   *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	catalog  services.Catalog
	handle   player.Handle
	player   StateSource
	likes    LikeStore
	statuses []string
	now      func() time.Time
	logger   *log.Logger

	width     int
	height    int
	tracks    []models.Track
	trackList list.Model
	liked     map[string]struct{}
	state     player.State

	renderer *waveform.Renderer
	samples  []float64 // generated once per model, shared by every track
	bar      progress.Model

	feed      *gesture.Feed
	detach    func()
	pending   []tea.Cmd
	dragging  bool
	scrubbing bool

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Samples <= 0 {
		opts.Samples = waveform.DefaultSamples
	}
	seed := opts.Seed
	if seed == 0 {
		seed = opts.Now().UnixNano()
	}
	if len(opts.Statuses) == 0 {
		opts.Statuses = []string{models.StatusReady, models.StatusLive}
	}

	trackList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	trackList.Title = "Catalog"
	trackList.SetShowHelp(false)
	trackList.DisableQuitKeybindings()

	m := &Model{
		ctx:       ctx,
		view:      LoadingView,
		catalog:   opts.Catalog,
		handle:    opts.Handle,
		player:    opts.Player,
		likes:     opts.Likes,
		statuses:  opts.Statuses,
		now:       opts.Now,
		logger:    opts.Logger.With("component", "ui"),
		trackList: trackList,
		liked:     map[string]struct{}{},
		renderer:  styles.waveform(waveform.NewRenderer(80-2*margin, 4)),
		samples:   waveform.Generate(opts.Samples, rand.New(rand.NewSource(seed))),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		feed:      gesture.NewFeed(),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	if m.player != nil {
		m.state = m.player.State()
	}

	m.detach = gesture.Attach(m.feed, gesture.Config{
		OnSwipeLeft:  func() { m.pending = append(m.pending, m.next()) },
		OnSwipeRight: func() { m.pending = append(m.pending, m.previous()) },
		OnSwipeUp:    func() { m.expand() },
		OnSwipeDown:  func() { m.collapse() },
	})
	return m
}

// Current returns the active view.
func (m *Model) Current() ViewState { return m.view }

// Init fetches the catalog and starts listening for player updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTracks(), m.waitForState())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTracksLoaded:
		data := msg.data.(tracksLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.tracks = data.tracks
		if data.liked != nil {
			m.liked = data.liked
		}
		m.view = BrowseView
		return m, m.trackList.SetItems(trackItems(m.tracks, m.liked))

	case MsgStateChanged:
		s := msg.data.(player.State)
		if trackID(s) != trackID(m.state) {
			m.status = ""
		}
		m.state = s
		if s.Track == nil && m.view == PlayerView {
			m.view = BrowseView
		}
		return m, m.waitForState()

	case MsgPlayerClosed:
		return m, nil

	case MsgLikeToggled:
		data := msg.data.(likeToggled)
		if data.err != nil {
			m.status = fmt.Sprintf("Couldn't update likes: %v", data.err)
			return m, nil
		}
		if data.liked {
			m.liked[data.trackID] = struct{}{}
		} else {
			delete(m.liked, data.trackID)
		}
		return m, m.trackList.SetItems(trackItems(m.tracks, m.liked))

	case MsgCommandFailed:
		err := msg.data.(error)
		m.status = describe(err)
		m.logger.Warn("playback command failed", "error", err)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == BrowseView && m.trackList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}
	if key.Matches(msg, m.keys.quit) {
		return m, m.quit()
	}
	if m.view == LoadingView {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		m.handle.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.seekBack):
		m.seekBy(-seekStep)
		return m, nil
	case key.Matches(msg, m.keys.seekFwd):
		m.seekBy(seekStep)
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.next()
	case key.Matches(msg, m.keys.prev):
		return m, m.previous()
	case key.Matches(msg, m.keys.like):
		return m, m.toggleLike()
	case key.Matches(msg, m.keys.expand):
		if m.view == PlayerView {
			m.collapse()
		} else {
			m.expand()
		}
		return m, nil
	case key.Matches(msg, m.keys.back) && m.view == PlayerView:
		m.collapse()
		return m, nil
	case key.Matches(msg, m.keys.enter) && m.view == BrowseView:
		return m, m.playSelected()
	}

	if m.view == BrowseView {
		return m.updateList(msg)
	}
	return m, nil
}

// handleMouse seeks on waveform clicks and drags, and turns other left-button drags into touch events.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view == LoadingView {
		return m, nil
	}

	now := m.now()
	pt := gesture.Point{X: float64(msg.X * cellWidth), Y: float64(msg.Y * cellHeight)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if x, ok := m.waveformX(msg.X, msg.Y); ok {
			m.scrubbing = true
			m.handle.Seek(m.renderer.Surface.SeekPercent(x))
			return m, nil
		}
		m.dragging = true
		m.feed.Start(now, pt)

	case tea.MouseActionMotion:
		switch {
		case m.scrubbing:
			m.handle.Seek(m.renderer.Surface.SeekPercent(float64(msg.X-margin) + 0.5))
		case m.dragging:
			m.feed.Move(now, pt)
		}

	case tea.MouseActionRelease:
		switch {
		case m.scrubbing:
			m.scrubbing = false
		case m.dragging:
			m.dragging = false
			m.feed.End(now, pt)
		}
	}

	cmds := m.pending
	m.pending = nil
	return m, tea.Batch(cmds...)
}

// waveformX maps a cell to the logical x of its centre on the waveform surface.
func (m *Model) waveformX(x, y int) (float64, bool) {
	if m.view != PlayerView || m.state.Track == nil {
		return 0, false
	}
	surface := m.renderer.Surface
	col := x - margin
	if y < waveformTop || y >= waveformTop+surface.Height || col < 0 || col >= surface.Width {
		return 0, false
	}
	return float64(col) + 0.5, true
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.renderer.Surface.Resize(width - 2*margin)
	if height < 16 {
		m.renderer.Surface.Height = 2
	} else {
		m.renderer.Surface.Height = 4
	}
	m.bar.Width = max(width-2*margin-16, 10)
	m.trackList.SetSize(max(width-2*margin, 10), max(height-miniPlayerRows, 3))
	m.help.Width = width
}

func (m *Model) seekBy(delta float64) {
	if m.state.Track == nil {
		return
	}
	m.handle.SeekBy(delta)
}

func (m *Model) expand() {
	if m.view == BrowseView && m.state.Track != nil {
		m.view = PlayerView
	}
}

func (m *Model) collapse() {
	if m.view == PlayerView {
		m.view = BrowseView
	}
}

func (m *Model) quit() tea.Cmd {
	if m.detach != nil {
		m.detach()
		m.detach = nil
	}
	if m.player != nil {
		m.player.Close()
	}
	return tea.Quit
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != BrowseView {
		return m, nil
	}
	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) fetchTracks() tea.Cmd {
	ctx, catalog, likes, statuses := m.ctx, m.catalog, m.likes, m.statuses
	return func() tea.Msg {
		tracks, err := catalog.ListTracks(ctx, statuses...)
		if err != nil {
			return tracksLoadedMsg(nil, nil, err)
		}
		var liked map[string]struct{}
		if likes != nil {
			if liked, err = likes.Load(); err != nil {
				return tracksLoadedMsg(nil, nil, fmt.Errorf("failed to load likes: %w", err))
			}
		}
		return tracksLoadedMsg(tracks, liked, nil)
	}
}

// waitForState blocks on the player's next snapshot. The channel is closed when the player closes.
func (m *Model) waitForState() tea.Cmd {
	if m.player == nil {
		return nil
	}
	updates := m.player.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return playerClosedMsg()
		}
		return stateChangedMsg(s)
	}
}

func (m *Model) run(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return commandFailedMsg(err)
		}
		return nil
	}
}

func (m *Model) next() tea.Cmd     { return m.run(m.handle.Next) }
func (m *Model) previous() tea.Cmd { return m.run(m.handle.Previous) }

// playSelected queues the visible tracks from the selection onward.
func (m *Model) playSelected() tea.Cmd {
	visible := m.trackList.VisibleItems()
	idx := m.trackList.Index()
	if idx < 0 || idx >= len(visible) {
		return nil
	}
	ids := make([]string, 0, len(visible)-idx)
	for _, item := range visible[idx:] {
		if ti, ok := item.(trackItem); ok {
			ids = append(ids, ti.track.ID)
		}
	}
	return m.run(func(ctx context.Context) error { return m.handle.PlayPlaylist(ctx, ids) })
}

// toggleLike targets the current track in the full player and the selected row otherwise.
func (m *Model) toggleLike() tea.Cmd {
	if m.likes == nil {
		return nil
	}
	var id string
	switch m.view {
	case PlayerView:
		id = trackID(m.state)
	case BrowseView:
		if ti, ok := m.trackList.SelectedItem().(trackItem); ok {
			id = ti.track.ID
		}
	}
	if id == "" {
		return nil
	}
	likes := m.likes
	return func() tea.Msg {
		liked, err := likes.Toggle(id)
		return likeToggledMsg(id, liked, err)
	}
}

func (m *Model) isLiked(id string) bool {
	_, ok := m.liked[id]
	return ok
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case BrowseView:
		return m.renderBrowse()
	case PlayerView:
		return m.renderPlayer()
	default:
		return ""
	}
}

func (m *Model) renderLoading() string {
	if m.err != nil {
		return pad(styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + styles.help.Render("Press q to quit"))
	}
	return pad(styles.title.Render("wavelet") + "\n\nLoading catalog...")
}

func (m *Model) renderBrowse() string {
	var b strings.Builder
	b.WriteString(m.trackList.View())
	b.WriteString("\n\n")
	b.WriteString(pad(m.renderMini()))
	b.WriteString("\n")
	b.WriteString(pad(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(pad(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.toggle, m.keys.next, m.keys.expand, m.keys.like, m.keys.quit})))
	return b.String()
}

func (m *Model) renderMini() string {
	s := m.state
	if s.Track == nil {
		return styles.help.Render("Nothing playing") + "\n"
	}
	icon := "⏸"
	if s.Playing {
		icon = "▶"
	}
	line := fmt.Sprintf("%s %s · %s", icon, s.Track.Title, s.Track.Artist)
	if m.isLiked(s.Track.ID) {
		line += " " + styles.liked.Render("♥")
	}
	return ansi.Truncate(line, max(m.width-2*margin, 20), "…") + "\n" + m.bar.ViewAs(s.Progress/100) + "  " + times(s)
}

func (m *Model) renderPlayer() string {
	s := m.state
	if s.Track == nil {
		return pad(styles.help.Render("Nothing playing"))
	}
	t := *s.Track
	width := max(m.width-2*margin, 20)

	mode := "paused"
	if s.Playing {
		mode = "playing"
	}
	title := ansi.Truncate(t.Title, width-2, "…")
	if m.isLiked(t.ID) {
		title += " " + styles.liked.Render("♥")
	}
	if t.Explicit {
		title += " " + styles.warn.Render("[E]")
	}

	lines := []string{
		styles.title.Render("Now Playing") + " " + styles.help.Render(mode),
		"",
		title,
		styles.help.Render(ansi.Truncate(t.Artist, width, "…")),
		"",
	}
	lines = append(lines, strings.Split(m.renderer.Render(m.samples, s.Progress, s.Playing), "\n")...)
	lines = append(lines,
		times(s),
		m.statusLine(),
		m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.seekBack, m.keys.seekFwd, m.keys.next, m.keys.prev, m.keys.like, m.keys.expand, m.keys.quit}),
	)
	return pad(strings.Join(lines, "\n"))
}

func (m *Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	return styles.warn.Render(m.status)
}

func times(s player.State) string {
	total := 0
	if s.Track != nil {
		total = s.Track.Duration
	}
	return fmt.Sprintf("%s / %s", shared.FormatDuration(int(s.Elapsed().Seconds())), shared.FormatDuration(total))
}

func pad(s string) string {
	prefix := strings.Repeat(" ", margin)
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func trackID(s player.State) string {
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}

func describe(err error) string {
	var perr *player.PlaybackError
	switch {
	case errors.As(err, &perr) && perr.Kind == player.LoadFailed:
		return "Couldn't load track, playback paused"
	case errors.Is(err, shared.ErrEmptyQueue):
		return "Queue is empty"
	case errors.Is(err, shared.ErrPlayerClosed):
		return "Player closed"
	default:
		return err.Error()
	}
}

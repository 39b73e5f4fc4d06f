package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksLoaded MsgKind = iota
	MsgStateChanged
	MsgPlayerClosed
	MsgLikeToggled
	MsgCommandFailed
)

type tracksLoaded struct {
	tracks []models.Track
	liked  map[string]struct{}
	err    error
}

type likeToggled struct {
	trackID string
	liked   bool
	err     error
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(tracks []models.Track, liked map[string]struct{}, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksLoaded{tracks, liked, err}}
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(s player.State) Msg {
	return Msg{kind: MsgStateChanged, data: s}
}

// playerClosedMsg is the constructor for [MsgPlayerClosed]
func playerClosedMsg() Msg {
	return Msg{kind: MsgPlayerClosed}
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(trackID string, liked bool, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: likeToggled{trackID, liked, err}}
}

// commandFailedMsg is the constructor for [MsgCommandFailed]
func commandFailedMsg(err error) Msg {
	return Msg{kind: MsgCommandFailed, data: err}
}

package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wavelet/internal/waveform"
)

// violet is the brand accent, shared with the waveform's played bars.
var violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#8B5CF6"}

var styles = newTheme(
	violet,
	lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"},
	lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"},
	lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#6B7280"},
)

// theme holds the named styles the views draw with.
type theme struct {
	title lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	liked lipgloss.Style

	accent lipgloss.TerminalColor
	muted  lipgloss.TerminalColor
}

func newTheme(accent, red, amber, grey lipgloss.TerminalColor) *theme {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return &theme{
		title:  fg(accent).Bold(true),
		err:    fg(red).Bold(true),
		warn:   fg(amber),
		help:   fg(grey).Italic(true),
		liked:  fg(red),
		accent: accent,
		muted:  grey,
	}
}

// waveform recolours r so the played region matches the title accent.
func (t *theme) waveform(r *waveform.Renderer) *waveform.Renderer {
	r.Played = lipgloss.NewStyle().Foreground(t.accent)
	r.Muted = lipgloss.NewStyle().Foreground(t.muted).Faint(true)
	return r
}

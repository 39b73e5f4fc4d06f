package waveform

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var levels = []rune(" ▁▂▃▄▅▆▇█")

const (
	markerPaused  = "│"
	markerPlaying = "┃"
)

// Renderer draws samples as a bar chart of terminal cells.
type Renderer struct {
	Surface Surface
	Played  lipgloss.Style
	Muted   lipgloss.Style
	Marker  lipgloss.Style
}

// NewRenderer returns a renderer with the default violet/grey styles.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Surface: Surface{Width: width, Height: max(height, 1), PixelRatio: 1},
		Played:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
		Marker:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Bold(true),
	}
}

// Render draws one column per cell of the surface width. Each column takes the sample at its relative
// position; columns at or before progress use the played style. The marker column replaces its bar.
func (r *Renderer) Render(samples []float64, progress float64, playing bool) string {
	width, height := r.Surface.Width, max(r.Surface.Height, 1)
	if width <= 0 || len(samples) == 0 {
		return ""
	}

	glyph := markerPaused
	if playing {
		glyph = markerPlaying
	}

	n := len(samples)
	amps := make([]float64, width)
	playedCols := 0
	for c := range width {
		i := c * n / width
		amps[c] = samples[i]
		if played(i, n, progress) {
			playedCols = c + 1
		}
	}
	marker := markerOffset(progress, width)

	rows := make([]string, height)
	for row := range height {
		floor := (height - 1 - row) * (len(levels) - 1)
		cells := make([]rune, width)
		for c, a := range amps {
			filled := int(a*float64(height*(len(levels)-1)) + 0.5)
			cells[c] = levels[min(max(filled-floor, 0), len(levels)-1)]
		}

		var b strings.Builder
		b.WriteString(r.span(cells, 0, min(marker, playedCols), true))
		b.WriteString(r.span(cells, min(marker, playedCols), marker, false))
		b.WriteString(r.Marker.Render(glyph))
		b.WriteString(r.span(cells, marker+1, max(marker+1, playedCols), true))
		b.WriteString(r.span(cells, max(marker+1, playedCols), width, false))
		rows[row] = b.String()
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) span(cells []rune, from, to int, isPlayed bool) string {
	if from >= to {
		return ""
	}
	if isPlayed {
		return r.Played.Render(string(cells[from:to]))
	}
	return r.Muted.Render(string(cells[from:to]))
}

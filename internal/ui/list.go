package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
	liked bool
}

func (i trackItem) FilterValue() string { return i.track.Title + " " + i.track.Artist }
func (i trackItem) Title() string {
	if i.liked {
		return i.track.Title + " " + styles.liked.Render("♥")
	}
	return i.track.Title
}
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.track.Artist, shared.FormatDuration(i.track.Duration))
	if i.track.Explicit {
		desc += " • explicit"
	}
	return desc
}

func trackItems(tracks []models.Track, liked map[string]struct{}) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		_, ok := liked[t.ID]
		items[i] = trackItem{track: t, liked: ok}
	}
	return items
}

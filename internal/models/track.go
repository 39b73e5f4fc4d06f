package models

import (
	"fmt"
	"time"
)

// Catalog publication states the player reads from.
const (
	StatusReady = "ready"
	StatusLive  = "live"
)

// Track represents a single playable audio item.
//
// ArtworkURL and AudioURL are opaque references resolved by object storage.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	AudioURL   string `json:"audio_url"`
	Duration   int    `json:"duration"` // Duration in seconds
	Explicit   bool   `json:"explicit"`
	Status     string `json:"status,omitempty"`
}

// Length returns the track duration as a [time.Duration].
func (t Track) Length() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// WithDuration returns a copy of t with the duration replaced.
func (t Track) WithDuration(d time.Duration) Track {
	t.Duration = int(d.Round(time.Second) / time.Second)
	return t
}

// PersistedTrack is a [Track] cached in the local database.
type PersistedTrack struct {
	record
	track     Track
	deletedAt *time.Time
}

var _ Entity = (*PersistedTrack)(nil)

// NewPersistedTrack wraps a catalog track for caching.
func NewPersistedTrack(sequence int, track Track) *PersistedTrack {
	return &PersistedTrack{record: newRecord(sequence), track: track}
}

func (p *PersistedTrack) Track() Track              { return p.track }
func (p *PersistedTrack) CatalogID() string         { return p.track.ID }
func (p *PersistedTrack) DeletedAt() *time.Time     { return p.deletedAt }
func (p *PersistedTrack) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// SetTrack replaces the cached metadata, keeping the catalog id.
func (p *PersistedTrack) SetTrack(t Track) {
	t.ID = p.track.ID
	p.track = t
}

// Validate checks required catalog fields.
func (p *PersistedTrack) Validate() error {
	if p.track.ID == "" {
		return fmt.Errorf("catalog id is required")
	}
	if p.track.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.track.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

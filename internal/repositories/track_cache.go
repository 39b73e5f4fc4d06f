package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Provides upsert semantics keyed by catalog id: new tracks are inserted, known tracks have
// their metadata refreshed in place.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTrack inserts or refreshes a catalog track.
// Reports whether the track was newly inserted.
func (a *TrackCacheAdapter) CacheTrack(track models.Track) (bool, error) {
	existing, err := a.repo.GetByCatalogID(track.ID)
	switch {
	case err == nil:
		existing.SetTrack(track)
		if err := a.repo.Update(existing); err != nil {
			return false, fmt.Errorf("failed to refresh cached track: %w", err)
		}
		return false, nil
	case errors.Is(err, shared.ErrTrackNotFound):
	default:
		return false, err
	}

	if err := a.repo.Create(models.NewPersistedTrack(0, track)); err != nil {
		return false, fmt.Errorf("failed to cache track: %w", err)
	}
	return true, nil
}

// package services defines interface Catalog for reading the hosted track catalog
package services

import (
	"context"

	"github.com/desertthunder/wavelet/internal/models"
)

// Catalog is a read-only, asynchronous provider of [models.Track] records.
type Catalog interface {
	// ListTracks returns tracks whose status is one of statuses, newest first.
	// No statuses means every track.
	ListTracks(ctx context.Context, statuses ...string) ([]models.Track, error)

	// GetTracks resolves ids to tracks in the order of ids. Unknown ids are skipped.
	GetTracks(ctx context.Context, ids []string) ([]models.Track, error)
}

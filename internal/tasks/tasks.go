// package tasks implements the catalog sync pass.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/services"
	"github.com/desertthunder/wavelet/internal/shared"
	"golang.org/x/sync/errgroup"
)

// TrackCacher persists catalog tracks locally. CacheTrack reports whether the track was new.
type TrackCacher interface {
	CacheTrack(track models.Track) (bool, error)
}

// TrackFailure pairs a track with the error that kept it out of the cache.
type TrackFailure struct {
	Track models.Track
	Error error
}

// SyncResult summarises one sync pass.
type SyncResult struct {
	Statuses []string
	Tracks   []models.Track // Unique tracks in fetch order
	Fetched  int            // Rows returned before dedupe
	Inserted int
	Updated  int
	Failed   []TrackFailure
}

// SyncEngine defines the catalog sync operation.
type SyncEngine interface {
	// Sync fetches tracks in the given statuses and caches them locally.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, statuses ...string) (*SyncResult, error)
}

// CatalogEngine implements [SyncEngine] over a [services.Catalog] and a [TrackCacher].
type CatalogEngine struct {
	catalog services.Catalog
	cache   TrackCacher
}

var _ SyncEngine = (*CatalogEngine)(nil)

// NewCatalogEngine creates a sync engine. cache may be nil to only fetch.
func NewCatalogEngine(catalog services.Catalog, cache TrackCacher) *CatalogEngine {
	return &CatalogEngine{catalog: catalog, cache: cache}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync runs fetch, dedupe and cache. A fetch failure for any status aborts the pass.
func (e *CatalogEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, statuses ...string) (*SyncResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{Statuses: statuses}

	groups := statuses
	if len(groups) == 0 {
		groups = []string{""}
	}
	e.sendProgress(progress, fetchCatalogUpdate(0, len(groups), statuses))

	batches := make([][]models.Track, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range groups {
		g.Go(func() error {
			var (
				tracks []models.Track
				err    error
			)
			if status == "" {
				tracks, err = e.catalog.ListTracks(gctx)
			} else {
				tracks, err = e.catalog.ListTracks(gctx, status)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch %q tracks: %w", status, err)
			}
			batches[i] = tracks
			e.sendProgress(progress, fetchedStatusUpdate(i+1, len(groups), status, len(tracks)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, batch := range batches {
		result.Fetched += len(batch)
		for _, t := range batch {
			if _, dup := seen[t.ID]; dup || t.ID == "" {
				continue
			}
			seen[t.ID] = struct{}{}
			result.Tracks = append(result.Tracks, t)
		}
	}
	e.sendProgress(progress, dedupeUpdate(result.Fetched, len(result.Tracks)))

	if e.cache != nil {
		total := len(result.Tracks)
		for i := range result.Tracks {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			tr := &result.Tracks[i]
			inserted, err := e.cache.CacheTrack(*tr)
			switch {
			case err != nil:
				result.Failed = append(result.Failed, TrackFailure{Track: *tr, Error: err})
				e.sendProgress(progress, cacheFailedUpdate(i+1, total, tr, err))
				continue
			case inserted:
				result.Inserted++
			default:
				result.Updated++
			}
			e.sendProgress(progress, cacheTrackUpdate(i+1, total, tr))
		}
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

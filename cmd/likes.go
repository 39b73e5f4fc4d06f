package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/wavelet/internal/formatter"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/repositories"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/urfave/cli/v3"
)

// LikesList prints the liked track ids in sorted order.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	ids, err := repositories.NewLikeRepository(db).List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ids, false)
	}
	if len(ids) == 0 {
		return r.writePlain("No liked songs yet.\n")
	}
	for _, id := range ids {
		r.writePlain("♥ %s\n", id)
	}
	return nil
}

// LikesToggle likes a track that is not liked and unlikes one that is.
func (r *Runner) LikesToggle(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	liked, err := repositories.NewLikeRepository(db).Toggle(id)
	if err != nil {
		return err
	}

	r.logger.Info("toggled like", "track", id, "liked", liked)
	if liked {
		return r.writePlain("♥ Liked %s\n", id)
	}
	return r.writePlain("♡ Unliked %s\n", id)
}

// LikesExport writes the liked tracks in the requested format.
//
// Tracks are resolved from the local cache first; ids the cache does not know are fetched from the catalog
// when one is configured.
func (r *Runner) LikesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	ids, err := repositories.NewLikeRepository(db).List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no liked songs to export", shared.ErrInvalidInput)
	}

	tracks, err := r.resolveLiked(ctx, repositories.NewTrackRepository(db), ids)
	if err != nil {
		return err
	}

	collection := &formatter.Collection{
		ID:          "liked-songs",
		Name:        "Liked Songs",
		Description: "Tracks liked in wavelet",
		ExportedAt:  time.Now().UTC(),
		Tracks:      tracks,
	}

	result, err := formatter.WriteExport(collection, format, cmd.String("output"), r.httpClient)
	if err != nil {
		return err
	}

	r.logger.Info("exported liked songs", "format", format, "tracks", len(tracks), "path", result.Path)
	r.writePlain("✓ Exported %d of %d liked songs to %s\n", len(tracks), len(ids), result.Path)
	for _, f := range result.Files {
		r.writePlain("  - %s\n", f)
	}
	return nil
}

// resolveLiked keeps the order of ids and drops ids neither source knows.
func (r *Runner) resolveLiked(ctx context.Context, cache *repositories.TrackRepository, ids []string) ([]models.Track, error) {
	cached, err := cache.GetTracks(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Track, len(ids))
	for _, t := range cached {
		byID[t.ID] = t
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 && r.catalog != nil {
		fetched, err := r.catalog.GetTracks(ctx, missing)
		if err != nil {
			r.logger.Warn("failed to fetch uncached liked tracks", "count", len(missing), "error", err)
		}
		for _, t := range fetched {
			byID[t.ID] = t
		}
	}

	tracks := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tracks = append(tracks, t)
		} else {
			r.logger.Warn("liked track not found", "track", id)
		}
	}
	return tracks, nil
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/repositories"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) statuses(cmd *cli.Command) []string {
	if s := cmd.StringSlice("status"); len(s) > 0 {
		return s
	}
	if len(r.config.Catalog.Statuses) > 0 {
		return r.config.Catalog.Statuses
	}
	return []string{models.StatusReady, models.StatusLive}
}

// CatalogList prints catalog tracks, either live from the catalog or from the sqlite cache.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	statuses := r.statuses(cmd)

	var tracks []models.Track
	if cmd.Bool("cached") {
		cached, err := r.cachedTracks(statuses)
		if err != nil {
			return err
		}
		tracks = cached
	} else {
		catalog, err := r.requireCatalog()
		if err != nil {
			return err
		}
		r.logger.Info("listing catalog", "statuses", statuses)
		if tracks, err = catalog.ListTracks(ctx, statuses...); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Catalog (%d tracks)", len(tracks)))
	for i, t := range tracks {
		explicit := ""
		if t.Explicit {
			explicit = " [E]"
		}
		r.writePlain("%3d. %s - %s%s (%s) [%s]\n", i+1, t.Artist, t.Title, explicit, shared.FormatDuration(t.Duration), t.ID)
	}
	return nil
}

func (r *Runner) cachedTracks(statuses []string) ([]models.Track, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	rows, err := repositories.NewTrackRepository(db).List(map[string]any{"status": statuses})
	if err != nil {
		return nil, fmt.Errorf("failed to list cached tracks: %w", err)
	}

	tracks := make([]models.Track, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, row.Track())
	}
	return tracks, nil
}

// CatalogSync fetches the catalog and caches every track in sqlite.
func (r *Runner) CatalogSync(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	statuses := r.statuses(cmd)
	engine := tasks.NewCatalogEngine(catalog, repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db)))

	r.logger.Info("starting catalog sync", "statuses", statuses)
	r.writePlain("Syncing catalog...\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Dedupe:
				r.writePlain("🧹 %s\n", update.Message)
			case tasks.CacheTracks:
				if update.Step == 0 {
					r.writePlain("\n💾 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			}
		}
	}()

	result, err := engine.Sync(ctx, progressCh, statuses...)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("Fetched: %d rows (%d unique)\n", result.Fetched, len(result.Tracks))
	r.writePlain("Inserted: %d, Updated: %d\n", result.Inserted, result.Updated)

	if len(result.Failed) > 0 {
		r.writePlain("\nFailed to cache %d tracks:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  - %s - %s: %v\n", f.Track.Artist, f.Track.Title, f.Error)
		}
	}
	return nil
}

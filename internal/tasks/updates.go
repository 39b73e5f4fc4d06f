package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wavelet/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCatalog Phase = iota
	Dedupe
	CacheTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchCatalog:
		return "fetch_catalog"
	case Dedupe:
		return "dedupe"
	case CacheTracks:
		return "cache_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchCatalogUpdate(step, total int, statuses []string) ProgressUpdate {
	label := "all"
	if len(statuses) > 0 {
		label = strings.Join(statuses, ", ")
	}
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching catalog (%s)...", label),
	}
}

func fetchedStatusUpdate(step, total int, status string, count int) ProgressUpdate {
	if status == "" {
		status = "all"
	}
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d %s tracks", count, status),
	}
}

func dedupeUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Dedupe,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merged %d rows into %d unique tracks", before, after),
	}
}

func cacheTrackUpdate(step, total int, tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
		Data:    tr,
	}
}

func cacheFailedUpdate(step, total int, tr *models.Track, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, tr.Title, err),
		Data:    tr,
	}
}

func completeUpdate(res *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: %d inserted, %d updated, %d failed", res.Inserted, res.Updated, len(res.Failed)),
		Data:    res,
	}
}

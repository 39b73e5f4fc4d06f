package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

const trackColumns = `id, sequence, catalog_id, title, artist, artwork_url, audio_url, duration, explicit, status, created_at, updated_at, deleted_at`

// TrackRepository implements models.Repository[*models.PersistedTrack] for the catalog cache.
//
// Handles soft deletes and catalog id lookups so the player can start from cached
// metadata while the hosted catalog is unreachable.
type TrackRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedTrack] = (*TrackRepository)(nil)

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.PersistedTrack] into the database with generated ID and sequence
func (r *TrackRepository) Create(track *models.PersistedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	track.SetID(id)
	track.SetSequence(sequence)

	t := track.Track()
	_, err = r.db.Exec(`
		INSERT INTO tracks (id, sequence, catalog_id, title, artist, artwork_url, audio_url, duration, explicit, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sequence, t.ID, t.Title, t.Artist, t.ArtworkURL, t.AudioURL, t.Duration, t.Explicit, t.Status,
		track.CreatedAt(), track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(id string) (*models.PersistedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByCatalogID retrieves a track by its catalog id
func (r *TrackRepository) GetByCatalogID(catalogID string) (*models.PersistedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE catalog_id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, catalogID))
}

// Update modifies an existing track in the database
func (r *TrackRepository) Update(track *models.PersistedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	track.Touch(now)

	t := track.Track()
	result, err := r.db.Exec(`
		UPDATE tracks
		SET title = ?, artist = ?, artwork_url = ?, audio_url = ?, duration = ?, explicit = ?, status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		t.Title, t.Artist, t.ArtworkURL, t.AudioURL, t.Duration, t.Explicit, t.Status, now, track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	return expectAffected(result, "track", track.ID())
}

// Delete soft-deletes a track by ID
func (r *TrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE tracks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	return expectAffected(result, "track", id)
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted tracks.
//
// Supported criteria: "status" (string or []string) and "explicit" (bool).
func (r *TrackRepository) List(criteria map[string]any) ([]*models.PersistedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case []string:
		if len(status) > 0 {
			query += " AND status IN (" + strings.TrimSuffix(strings.Repeat("?,", len(status)), ",") + ")"
			for _, s := range status {
				args = append(args, s)
			}
		}
	}

	if explicit, ok := criteria["explicit"].(bool); ok {
		query += " AND explicit = ?"
		args = append(args, explicit)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.PersistedTrack
	for rows.Next() {
		track, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// GetTracks returns cached tracks for the catalog ids, in the order given. Unknown ids are skipped.
//
// Satisfies player.Resolver so the player can resolve a queue without the network.
func (r *TrackRepository) GetTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(ids))
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE catalog_id = ? AND deleted_at IS NULL`
	for _, id := range ids {
		p, err := r.scan(r.db.QueryRowContext(ctx, query, id))
		if errors.Is(err, shared.ErrTrackNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, p.Track())
	}
	return tracks, nil
}

func (r *TrackRepository) scan(row scanner) (*models.PersistedTrack, error) {
	var (
		id, catalogID, title, artist, artwork, audio, status string
		sequence, duration                                   int
		explicit                                             bool
		createdAt, updatedAt                                 time.Time
		deletedAt                                            sql.NullTime
	)

	err := row.Scan(&id, &sequence, &catalogID, &title, &artist, &artwork, &audio, &duration, &explicit, &status, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := models.NewPersistedTrack(sequence, models.Track{
		ID:         catalogID,
		Title:      title,
		Artist:     artist,
		ArtworkURL: artwork,
		AudioURL:   audio,
		Duration:   duration,
		Explicit:   explicit,
		Status:     status,
	})
	track.SetID(id)
	track.Restore(createdAt, updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}

// expectAffected reports a not-found error when an UPDATE touched no rows.
func expectAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found or already deleted: %s", entity, id)
	}
	return nil
}

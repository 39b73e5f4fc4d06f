package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// LikeRepository persists the liked-song set.
//
// Each toggle touches a single row in its own transaction, so concurrent writers never drop each other's likes.
type LikeRepository struct {
	db *sql.DB
}

// NewLikeRepository creates a new LikeRepository with the given database connection
func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Load returns the liked track ids.
func (r *LikeRepository) Load() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT track_id FROM likes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	likes := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return likes, nil
}

// List returns the liked track ids sorted lexically.
func (r *LikeRepository) List() ([]string, error) {
	likes, err := r.Load()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(likes))
	for id := range likes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Toggle flips the liked flag for trackID inside one transaction and reports whether it is liked afterwards.
// Other likes, and their created_at, are left untouched.
func (r *LikeRepository) Toggle(trackID string) (bool, error) {
	if trackID == "" {
		return false, fmt.Errorf("track id is required")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM likes WHERE track_id = ?`, trackID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check removed like: %w", err)
	}
	if removed == 0 {
		if _, err := tx.Exec(`INSERT INTO likes (track_id, created_at) VALUES (?, ?)`, trackID, time.Now().UTC()); err != nil {
			return false, fmt.Errorf("failed to insert like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit like: %w", err)
	}
	return removed == 0, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// sequenced maps each entity table to its single-row counter table.
var sequenced = map[string]string{
	"tracks":    "tracks_sequence",
	"purchases": "purchases_sequence",
}

// NextSequence bumps the counter for table and returns the new value.
// Sequences order rows for listing; they never leave the process.
func NextSequence(db *sql.DB, table string) (int, error) {
	counter, ok := sequenced[table]
	if !ok {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var next int
	err := db.QueryRow(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", counter)).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sequence %s is not seeded", counter)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return next, nil
}

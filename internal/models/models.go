package models

import (
	"time"
)

// Entity is a row the local database owns.
type Entity interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface each entity store provides. List criteria keys are store specific.
type Repository[T Entity] interface {
	Create(entity T) error
	Get(id string) (T, error)
	Update(entity T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// record carries identity, ordering and timestamps for an [Entity].
// The id is assigned by the repository on create.
type record struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
}

func newRecord(sequence int) record {
	now := time.Now().UTC()
	return record{sequence: sequence, createdAt: now, updatedAt: now}
}

func (r *record) ID() string           { return r.id }
func (r *record) SetID(id string)      { r.id = id }
func (r *record) Sequence() int        { return r.sequence }
func (r *record) SetSequence(seq int)  { r.sequence = seq }
func (r *record) CreatedAt() time.Time { return r.createdAt }
func (r *record) UpdatedAt() time.Time { return r.updatedAt }

// Touch marks the record modified at now, kept in UTC.
func (r *record) Touch(now time.Time) { r.updatedAt = now.UTC() }

// Restore sets both timestamps when loading a stored row.
func (r *record) Restore(created, updated time.Time) { r.createdAt, r.updatedAt = created, updated }

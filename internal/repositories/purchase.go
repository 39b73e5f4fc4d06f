package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

const purchaseColumns = `id, sequence, provider, external_id, currency, amount_minor, status, created_at, updated_at`

// ErrPurchaseNotFound is returned when no purchase matches a lookup.
var ErrPurchaseNotFound = errors.New("purchase not found")

// PurchaseRepository implements models.Repository[*models.Purchase].
type PurchaseRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Purchase] = (*PurchaseRepository)(nil)

// NewPurchaseRepository creates a new PurchaseRepository with the given database connection
func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create inserts a purchase with generated ID and sequence
func (r *PurchaseRepository) Create(p *models.Purchase) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "purchases")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	p.SetID(id)
	p.SetSequence(sequence)

	_, err = r.db.Exec(`
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sequence, p.Provider(), p.ExternalID(), p.Currency(), p.AmountMinor(), p.Status(), p.CreatedAt(), p.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// Record stores p, or updates the status of the existing purchase with the same provider reference.
//
// Webhooks and approval callbacks may deliver the same event more than once, or out of order.
// Completed is terminal: later statuses for a completed purchase are ignored.
func (r *PurchaseRepository) Record(p *models.Purchase) error {
	existing, err := r.GetByExternalID(p.Provider(), p.ExternalID())
	if errors.Is(err, ErrPurchaseNotFound) {
		return r.Create(p)
	}
	if err != nil {
		return err
	}

	p.SetID(existing.ID())
	if existing.Status() == models.PurchaseCompleted || existing.Status() == p.Status() {
		p.SetStatus(existing.Status())
		return nil
	}

	existing.SetStatus(p.Status())
	return r.Update(existing)
}

// Get retrieves a purchase by ID
func (r *PurchaseRepository) Get(id string) (*models.Purchase, error) {
	return r.scan(r.db.QueryRow(`SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, id))
}

// GetByExternalID retrieves a purchase by provider reference
func (r *PurchaseRepository) GetByExternalID(provider, externalID string) (*models.Purchase, error) {
	return r.scan(r.db.QueryRow(`SELECT `+purchaseColumns+` FROM purchases WHERE provider = ? AND external_id = ?`, provider, externalID))
}

// Update modifies the status of an existing purchase
func (r *PurchaseRepository) Update(p *models.Purchase) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	p.Touch(now)

	result, err := r.db.Exec(`UPDATE purchases SET status = ?, updated_at = ? WHERE id = ?`, p.Status(), now, p.ID())
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	return expectAffected(result, "purchase", p.ID())
}

// Delete removes a purchase by ID
func (r *PurchaseRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return expectAffected(result, "purchase", id)
}

// List retrieves purchases, optionally filtered by "provider" and "status".
func (r *PurchaseRepository) List(criteria map[string]any) ([]*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1 = 1`
	args := []any{}

	for _, key := range []string{"provider", "status"} {
		if v, ok := criteria[key].(string); ok && v != "" {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return purchases, nil
}

func (r *PurchaseRepository) scan(row scanner) (*models.Purchase, error) {
	var (
		id, provider, externalID, currency, status string
		sequence                                   int
		amount                                     int64
		createdAt, updatedAt                       time.Time
	)

	err := row.Scan(&id, &sequence, &provider, &externalID, &currency, &amount, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase: %w", err)
	}

	p := models.NewPurchase(sequence, provider, externalID, currency, amount, status)
	p.SetID(id)
	p.Restore(createdAt, updatedAt)
	return p, nil
}

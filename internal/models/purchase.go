package models

import "fmt"

// Payment providers.
const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

// Purchase statuses.
const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
)

// Purchase records a checkout handled by a payment provider.
type Purchase struct {
	record
	provider    string
	externalID  string
	currency    string
	amountMinor int64
	status      string
}

var _ Entity = (*Purchase)(nil)

// NewPurchase creates a purchase for the given provider reference and amount in minor units.
func NewPurchase(sequence int, provider, externalID, currency string, amountMinor int64, status string) *Purchase {
	return &Purchase{
		record:      newRecord(sequence),
		provider:    provider,
		externalID:  externalID,
		currency:    currency,
		amountMinor: amountMinor,
		status:      status,
	}
}

func (p *Purchase) Provider() string   { return p.provider }
func (p *Purchase) ExternalID() string { return p.externalID }
func (p *Purchase) Currency() string   { return p.currency }
func (p *Purchase) AmountMinor() int64 { return p.amountMinor }
func (p *Purchase) Status() string     { return p.status }
func (p *Purchase) SetStatus(s string) { p.status = s }

// Validate checks provider, reference and amount.
func (p *Purchase) Validate() error {
	switch p.provider {
	case ProviderStripe, ProviderPayPal:
	default:
		return fmt.Errorf("unknown provider: %q", p.provider)
	}
	if p.externalID == "" {
		return fmt.Errorf("external id is required")
	}
	if len(p.currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code")
	}
	if p.amountMinor < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	switch p.status {
	case PurchasePending, PurchaseCompleted, PurchaseFailed:
	default:
		return fmt.Errorf("unknown status: %q", p.status)
	}
	return nil
}

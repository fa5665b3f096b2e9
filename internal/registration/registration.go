package registration

import (
	"time"

	internal "github.com/ussdlab/journey-console/internal"
	registrationDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/registration"
)

// GatewayRegistration binds a journey to a gateway menu slot for a provider,
// optionally with a price plan and a prepaid credit balance.
type GatewayRegistration struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	MenuText    string         `json:"menu_text"`
	Position    int            `json:"position"`
	GatewayID   string         `json:"gateway_id"`
	JourneyID   string         `json:"journey_id"`
	ProviderID  string         `json:"provider_id"`
	PricePlanID *string        `json:"price_plan_id,omitempty"`
	Credits     *CreditBalance `json:"credits,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreditBalance is a prepaid allowance snapshot. Used and Remaining always sum
// to Total.
type CreditBalance struct {
	Total     int64      `json:"total_credits"`
	Used      int64      `json:"used_credits"`
	Remaining int64      `json:"remaining_credits"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate enforces credit conservation: no negative component and
// used + remaining == total.
func (b *CreditBalance) Validate() error {
	if b.Total < 0 || b.Used < 0 || b.Remaining < 0 {
		return internal.NewValidationFieldError("credits", "credit components cannot be negative", internal.ErrCodeInvalidBalance)
	}
	if b.Used+b.Remaining != b.Total {
		return internal.NewValidationFieldError("credits", "used and remaining credits must sum to total", internal.ErrCodeInvalidBalance)
	}
	return nil
}

// Consume moves amount from remaining to used, conserving the total.
func (b *CreditBalance) Consume(amount int64) error {
	if amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be positive", internal.ErrCodeInvalidBalance)
	}
	if amount > b.Remaining {
		return internal.NewValidationFieldError("amount", "insufficient remaining credits", internal.ErrCodeInvalidBalance)
	}
	b.Used += amount
	b.Remaining -= amount
	return nil
}

// Expired reports whether the balance has passed its expiry, if one is set.
func (b *CreditBalance) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

func FromDataModel(r *registrationDatamodel.GatewayRegistration) *GatewayRegistration {
	reg := &GatewayRegistration{
		ID:          r.ID,
		Name:        r.Name,
		MenuText:    r.MenuText,
		Position:    r.Position,
		GatewayID:   r.GatewayID,
		JourneyID:   r.JourneyID,
		ProviderID:  r.ProviderID,
		PricePlanID: r.PricePlanID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.TotalCredits != nil && r.UsedCredits != nil && r.RemainingCredits != nil {
		reg.Credits = &CreditBalance{
			Total:     *r.TotalCredits,
			Used:      *r.UsedCredits,
			Remaining: *r.RemainingCredits,
			ExpiresAt: r.CreditsExpireAt,
		}
	}
	return reg
}

func ToDataModel(r *GatewayRegistration) *registrationDatamodel.GatewayRegistration {
	record := &registrationDatamodel.GatewayRegistration{
		ID:          r.ID,
		Name:        r.Name,
		MenuText:    r.MenuText,
		Position:    r.Position,
		GatewayID:   r.GatewayID,
		JourneyID:   r.JourneyID,
		ProviderID:  r.ProviderID,
		PricePlanID: r.PricePlanID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Credits != nil {
		record.TotalCredits = &r.Credits.Total
		record.UsedCredits = &r.Credits.Used
		record.RemainingCredits = &r.Credits.Remaining
		record.CreditsExpireAt = r.Credits.ExpiresAt
	}
	return record
}

package registration

import (
	"time"

	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/core/common/validation"
)

type CreditBalanceDTO struct {
	Total     int64      `json:"total_credits"`
	Used      int64      `json:"used_credits"`
	Remaining int64      `json:"remaining_credits"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type CreateRegistrationDTO struct {
	Name        string            `json:"name"`
	MenuText    string            `json:"menu_text"`
	Position    int               `json:"position"`
	JourneyID   string            `json:"journey_id"`
	ProviderID  string            `json:"provider_id"`
	PricePlanID *string           `json:"price_plan_id,omitempty"`
	Credits     *CreditBalanceDTO `json:"credits,omitempty"`
}

func (dto CreateRegistrationDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLen(120)
	v.Field("menu_text", dto.MenuText).Required().MaxLen(160)
	v.Field("position", dto.Position).Required().Positive(internal.ErrCodeInvalidPosition)
	v.Field("journey_id", dto.JourneyID).Required()
	v.Field("provider_id", dto.ProviderID).Required()
	return v.Validate()
}

type UpdateRegistrationDTO struct {
	Name        *string           `json:"name,omitempty"`
	MenuText    *string           `json:"menu_text,omitempty"`
	PricePlanID *string           `json:"price_plan_id,omitempty"`
	Credits     *CreditBalanceDTO `json:"credits,omitempty"`
}

type ReorderDTO struct {
	OrderedIDs []string `json:"ordered_ids"`
}

type ConsumeCreditsDTO struct {
	Amount int64 `json:"amount"`
}

type RegistrationResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	MenuText    string         `json:"menu_text"`
	Position    int            `json:"position"`
	GatewayID   string         `json:"gateway_id"`
	JourneyID   string         `json:"journey_id"`
	ProviderID  string         `json:"provider_id"`
	PricePlanID *string        `json:"price_plan_id,omitempty"`
	Credits     *CreditBalance `json:"credits,omitempty"`
}

type RegistrationsResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
}

func (r *GatewayRegistration) ToResponse() RegistrationResponse {
	return RegistrationResponse{
		ID:          r.ID,
		Name:        r.Name,
		MenuText:    r.MenuText,
		Position:    r.Position,
		GatewayID:   r.GatewayID,
		JourneyID:   r.JourneyID,
		ProviderID:  r.ProviderID,
		PricePlanID: r.PricePlanID,
		Credits:     r.Credits,
	}
}

func (dto *CreditBalanceDTO) ToBalance() *CreditBalance {
	if dto == nil {
		return nil
	}
	return &CreditBalance{
		Total:     dto.Total,
		Used:      dto.Used,
		Remaining: dto.Remaining,
		ExpiresAt: dto.ExpiresAt,
	}
}
